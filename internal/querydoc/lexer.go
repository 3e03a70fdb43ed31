package querydoc

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokDot
	tokStar
	tokMinus
	tokVar
	tokSubquery
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// is reports whether the token is the given keyword (case-insensitive).
func (t token) is(keyword string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, keyword)
}

// lex splits an expression into tokens.
func lex(field, input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case c == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
		case c == '.':
			tokens = append(tokens, token{tokDot, ".", i})
			i++
		case c == '*':
			tokens = append(tokens, token{tokStar, "*", i})
			i++
		case c == '-':
			tokens = append(tokens, token{tokMinus, "-", i})
			i++
		case c == '\'':
			start := i
			var sb strings.Builder
			i++
			closed := false
			for i < len(input) {
				if input[i] == '\'' {
					// '' is an escaped quote
					if i+1 < len(input) && input[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					closed = true
					i++
					break
				}
				sb.WriteByte(input[i])
				i++
			}
			if !closed {
				return nil, newParseError(field, start, "unterminated string literal")
			}
			tokens = append(tokens, token{tokString, sb.String(), start})
		case c == '=' || c == '<' || c == '>' || c == '!':
			start := i
			two := ""
			if i+1 < len(input) {
				two = input[i : i+2]
			}
			var op string
			switch two {
			case "==":
				op = "="
				i += 2
			case "!=", "<>":
				op = "!="
				i += 2
			case "<=", ">=":
				op = two
				i += 2
			default:
				if c == '!' {
					return nil, newParseError(field, start, "unexpected '!'")
				}
				op = string(c)
				i++
			}
			tokens = append(tokens, token{tokOp, op, start})
		case c == '$' || c == '@':
			start := i
			i++
			for i < len(input) && isIdentChar(rune(input[i])) {
				i++
			}
			if i == start+1 {
				return nil, newParseError(field, start, "expected a name after %q", string(c))
			}
			kind := tokVar
			if c == '@' {
				kind = tokSubquery
			}
			tokens = append(tokens, token{kind, input[start+1 : i], start})
		case unicode.IsDigit(c):
			start := i
			for i < len(input) && unicode.IsDigit(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{tokInt, input[start:i], start})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentChar(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{tokIdent, input[start:i], start})
		default:
			return nil, newParseError(field, i, "unexpected character %q", string(c))
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(input)})
	return tokens, nil
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentChar(c rune) bool {
	return c == '_' || c == ':' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

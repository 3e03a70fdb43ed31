package process

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// FullTextMatcher decides whether a text satisfies a full-text expression.
// Implementations must be safe for concurrent use.
type FullTextMatcher interface {
	Match(text, expression string) bool
}

// MatcherFunc adapts a function to FullTextMatcher.
type MatcherFunc func(text, expression string) bool

// Match implements FullTextMatcher.
func (f MatcherFunc) Match(text, expression string) bool {
	return f(text, expression)
}

// TermMatcher is the default FullTextMatcher.
//
// The expression is a whitespace-separated list of terms, all of which must
// occur in the text. A double-quoted term is matched as one phrase and a term
// prefixed with '-' must not occur. Matching ignores case. An expression
// without terms matches nothing.
type TermMatcher struct{}

// Match implements FullTextMatcher.
func (TermMatcher) Match(text, expression string) bool {
	terms := parseTerms(expression)
	if len(terms) == 0 {
		return false
	}
	fold := cases.Fold()
	haystack := fold.String(text)
	for _, t := range terms {
		if strings.Contains(haystack, fold.String(t.text)) == t.excluded {
			return false
		}
	}
	return true
}

type term struct {
	text     string
	excluded bool
}

func parseTerms(expression string) []term {
	var terms []term
	rest := []rune(expression)
	for len(rest) > 0 {
		if unicode.IsSpace(rest[0]) {
			rest = rest[1:]
			continue
		}

		var t term
		if rest[0] == '-' {
			t.excluded = true
			rest = rest[1:]
		}

		var end int
		if len(rest) > 0 && rest[0] == '"' {
			rest = rest[1:]
			end = indexRune(rest, '"')
			t.text = string(rest[:end])
			if end < len(rest) {
				end++ // closing quote
			}
		} else {
			end = indexFunc(rest, unicode.IsSpace)
			t.text = string(rest[:end])
		}
		rest = rest[end:]

		if t.text != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// indexRune returns the position of r in s, or len(s).
func indexRune(s []rune, r rune) int {
	return indexFunc(s, func(c rune) bool { return c == r })
}

func indexFunc(s []rune, f func(rune) bool) int {
	for i, c := range s {
		if f(c) {
			return i
		}
	}
	return len(s)
}

// likeRegexp translates a LIKE pattern: '%' matches any run of characters,
// '_' matches one character and '\' escapes the next character.
func likeRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`^(?s:`)
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(`.*`)
		case r == '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(regexp.QuoteMeta(`\`))
	}
	b.WriteString(`)$`)
	return regexp.Compile(b.String())
}

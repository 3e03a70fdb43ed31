// Package querydoc reads query documents: a small declarative form of the
// abstract query model that can be written in YAML, JSON or CUE.
//
// A document names its selectors and columns with short strings and states
// its criteria as an expression:
//
//	from: t1 AS a
//	joins:
//	  - type: inner
//	    source: t2 AS b
//	    on: a.c11 = b.c21
//	columns: [a.c11, b.c21 AS other]
//	where: a.c13 < 3 AND (b.c22 LIKE 'x%' OR CONTAINS(b, 'hello'))
//	orderBy: [a.c11 DESC]
//	limit: 10
//
// Compile turns a Document into a queryir.Query. View definitions in schema
// files and conformance scenarios are both written as documents.
//
// EXPRESSION GRAMMAR:
//
//	expr      := or
//	or        := and { OR and }
//	and       := unary { AND unary }
//	unary     := NOT unary | '(' expr ')' | CONTAINS '(' ref ',' string ')' | operand tail
//	operand   := LOWER '(' operand ')' | UPPER '(' operand ')' | LENGTH '(' ref ')' | ref
//	tail      := cmp static | [NOT] LIKE static | [NOT] IN '(' static {',' static} ')'
//	           | [NOT] IN @name | BETWEEN static AND static | IS [NOT] NULL
//	static    := 'string' | [-]integer | TRUE | FALSE | $variable | @subquery
//
// Keywords are case-insensitive. A reference without a selector prefix
// resolves to the only selector of the query and is an error otherwise.
package querydoc

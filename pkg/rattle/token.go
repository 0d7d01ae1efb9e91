package rattle

import "fmt"

// Position is a 1-based line/column location in template source.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Structural token kinds produced by the outer lexer. Everything between
// delimiter pairs is a single content token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokContent
	tokVarStart     // {{
	tokVarEnd       // }}
	tokTagStart     // {%
	tokTagEnd       // %}
	tokCommentStart // {#
	tokCommentEnd   // #}
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokContent:
		return "CONTENT"
	case tokVarStart:
		return "{{"
	case tokVarEnd:
		return "}}"
	case tokTagStart:
		return "{%"
	case tokTagEnd:
		return "%}"
	case tokCommentStart:
		return "{#"
	case tokCommentEnd:
		return "#}"
	}
	return "?"
}

type token struct {
	kind tokenKind
	val  string
	pos  Position
}

// Expression token kinds produced by the inner lexer when the parser asks
// for the content of a {{ }} region or tag argument to be tokenized.
type exprTokenKind int

const (
	exprEOF exprTokenKind = iota
	exprName
	exprNumber
	exprString
	exprOp // val holds the operator text: + - * / % . [ ] ( ) , = | : == != < <= > >=
)

func (k exprTokenKind) String() string {
	switch k {
	case exprEOF:
		return "end of expression"
	case exprName:
		return "NAME"
	case exprNumber:
		return "NUMBER"
	case exprString:
		return "STRING"
	case exprOp:
		return "operator"
	}
	return "?"
}

type exprToken struct {
	kind exprTokenKind
	val  string
	pos  Position
}

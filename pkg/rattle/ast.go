package rattle

import (
	"fmt"
	"strings"
)

// Node is any document AST node in a parsed template.
type Node interface {
	node()
}

// Document is the root produced by Parse. Block bodies are registered in
// Blocks; their place in the surrounding body is held by a BlockRefNode.
type Document struct {
	Nodes      []Node
	Blocks     map[string][]Node
	BlockOrder []string
	Extends    string // parent template reference, or "" if none
}

// TextNode is literal content between delimiters.
type TextNode struct {
	Text string
	Pos  Position
}

func (*TextNode) node() {}

// EmitNode is a variable output region: {{ expr }}. Its value is
// stringified through the environment's escape hook before emission.
type EmitNode struct {
	Expr Expr
	Pos  Position
}

func (*EmitNode) node() {}

// IfNode is {% if cond %} ... [{% else %} ...] {% endif %}.
type IfNode struct {
	Cond Expr
	Then []Node
	Else []Node
	Pos  Position
}

func (*IfNode) node() {}

// ForNode is {% for target in iter %} ... [{% else %}|{% empty %} ...]
// {% endfor %}. The else branch runs iff the iterable yields no elements.
type ForNode struct {
	Target string
	Iter   Expr
	Body   []Node
	Else   []Node
	Pos    Position
}

func (*ForNode) node() {}

// BlockRefNode marks the spot a {% block name %} definition occupied; at
// render time it delegates to the named block procedure.
type BlockRefNode struct {
	Name string
	Pos  Position
}

func (*BlockRefNode) node() {}

// CommentNode is {# ... #}. Retained for source fidelity, never emitted.
type CommentNode struct {
	Pos Position
}

func (*CommentNode) node() {}

// Expr is any expression AST node.
type Expr interface {
	expr()
	String() string
}

// LiteralExpr holds a number or string literal.
type LiteralExpr struct {
	Value Value
	Pos   Position
}

func (*LiteralExpr) expr() {}
func (e *LiteralExpr) String() string {
	if s, ok := e.Value.(StringValue); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return e.Value.String()
}

// LookupExpr resolves a bare name against the render context.
type LookupExpr struct {
	Name string
	Pos  Position
}

func (*LookupExpr) expr()            {}
func (e *LookupExpr) String() string { return e.Name }

// AttrExpr is attribute access: base.name.
type AttrExpr struct {
	Base Expr
	Name string
	Pos  Position
}

func (*AttrExpr) expr()            {}
func (e *AttrExpr) String() string { return e.Base.String() + "." + e.Name }

// IndexExpr is subscript access: base[index].
type IndexExpr struct {
	Base  Expr
	Index Expr
	Pos   Position
}

func (*IndexExpr) expr()            {}
func (e *IndexExpr) String() string { return e.Base.String() + "[" + e.Index.String() + "]" }

// BinaryExpr covers arithmetic (+ - * / %) and boolean (and or) operators.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

func (*BinaryExpr) expr() {}
func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}

// CompareExpr is a single, non-chaining comparison:
// == != < <= > >= in not-in is is-not.
type CompareExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

func (*CompareExpr) expr() {}
func (e *CompareExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}

// Kwarg is one keyword argument in a call or filter application.
type Kwarg struct {
	Name  string
	Value Expr
}

// FilterExpr applies the named filter; Args[0] is always the piped left
// operand. The name may be a dotted path.
type FilterExpr struct {
	Name   string
	Args   []Expr
	Kwargs []Kwarg
	Pos    Position
}

func (*FilterExpr) expr() {}
func (e *FilterExpr) String() string {
	return e.Args[0].String() + "|" + e.Name + formatArgs(e.Args[1:], e.Kwargs)
}

// CallExpr invokes a callee with positional and keyword arguments.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Kwargs []Kwarg
	Pos    Position
}

func (*CallExpr) expr() {}
func (e *CallExpr) String() string {
	return e.Callee.String() + formatArgs(e.Args, e.Kwargs)
}

func formatArgs(args []Expr, kwargs []Kwarg) string {
	var parts []string
	for _, a := range args {
		parts = append(parts, a.String())
	}
	for _, k := range kwargs {
		parts = append(parts, k.Name+"="+k.Value.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

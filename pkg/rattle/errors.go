package rattle

import (
	"errors"
	"fmt"
)

// ErrExtendsTooDeep reports an extends chain longer than MaxExtendsDepth.
// A self-referential chain is indistinguishable from an over-deep one, so
// cycles surface through this guard instead of unbounded recursion.
var ErrExtendsTooDeep = errors.New("extends chain exceeds maximum depth")

// LexError reports a tokenization failure: an unterminated delimiter, an
// unterminated quote or parenthesis in a tag argument list, or an
// unexpected character inside an expression.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string { return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg) }

// SyntaxError reports a grammar violation, naming the offending token and
// the position it was seen at.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg) }

func syntaxErrf(pos Position, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// DuplicateBlockError reports two block definitions with the same name at
// one inheritance level.
type DuplicateBlockError struct {
	Name string
	Pos  Position
}

func (e *DuplicateBlockError) Error() string {
	return fmt.Sprintf("duplicate block %q at %s", e.Name, e.Pos)
}

// RenderError reports a failure while evaluating a compiled template:
// a missing context key, a missing attribute, a non-subscriptable value,
// or an unknown filter or function name. It aborts the render in progress.
type RenderError struct {
	Pos Position
	Msg string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error at %s: %s", e.Pos, e.Msg)
}

func renderErrf(pos Position, format string, args ...any) error {
	return &RenderError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

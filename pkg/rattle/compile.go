package rattle

import (
	"html"
	"slices"
)

// Environment holds the collaborators the engine consumes: the Loader used
// by extends, the filter table consulted at render time, and the escape
// hook applied to every emitted expression value. A zero Environment works;
// NewEnvironment fills in the default filter table and plain stringification.
type Environment struct {
	Loader  Loader
	Filters Filters
	Escape  func(Value) string
}

func NewEnvironment() *Environment {
	return &Environment{Filters: DefaultFilters(), Escape: DefaultEscape}
}

// DefaultEscape stringifies a value with no escaping.
func DefaultEscape(v Value) string { return v.String() }

// HTMLEscape stringifies a value and escapes HTML metacharacters.
func HTMLEscape(v Value) string { return html.EscapeString(v.String()) }

// proc is one compiled render procedure. It pushes fragments through
// yield; a false return from yield means the consumer stopped, which the
// proc reports as errStopped so the walk unwinds without a real error.
type proc func(rc *renderContext, yield func(string) bool) error

// Template is the compiled form of a template source: one procedure per
// named block plus the root procedure. It is immutable once built and safe
// for concurrent renders, provided each render supplies its own context.
type Template struct {
	env   *Environment
	root  proc
	procs map[string]proc
	order []string
}

// Compile parses src, resolves inheritance through the environment's
// Loader, and lowers the result to an executable Template.
func (e *Environment) Compile(src string) (*Template, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	res, err := e.resolve(doc, 0)
	if err != nil {
		return nil, err
	}
	t := &Template{env: e, procs: make(map[string]proc, len(res.blocks)), order: res.order}
	for name, body := range res.blocks {
		t.procs[name] = t.compileNodes(body)
	}
	body := t.compileNodes(res.root)
	// The root emits one empty leading fragment so even an empty template
	// yields a well-formed, non-empty sequence.
	t.root = func(rc *renderContext, yield func(string) bool) error {
		if !yield("") {
			return errStopped
		}
		return body(rc, yield)
	}
	return t, nil
}

// CompileNamed loads a template by reference through the environment's
// Loader and compiles it.
func (e *Environment) CompileNamed(name string) (*Template, error) {
	if e.Loader == nil {
		return nil, ErrTemplateNotFound{Name: name}
	}
	src, err := e.Loader.Load(name)
	if err != nil {
		return nil, err
	}
	return e.Compile(src)
}

// Blocks reports the names of the template's blocks in definition order,
// parents first.
func (t *Template) Blocks() []string { return slices.Clone(t.order) }

func (t *Template) compileNodes(nodes []Node) proc {
	procs := make([]proc, 0, len(nodes))
	for _, n := range nodes {
		if p := t.compileNode(n); p != nil {
			procs = append(procs, p)
		}
	}
	return func(rc *renderContext, yield func(string) bool) error {
		for _, p := range procs {
			if err := p(rc, yield); err != nil {
				return err
			}
		}
		return nil
	}
}

func (t *Template) compileNode(n Node) proc {
	switch node := n.(type) {
	case *TextNode:
		text := node.Text
		return func(rc *renderContext, yield func(string) bool) error {
			if !yield(text) {
				return errStopped
			}
			return nil
		}
	case *EmitNode:
		expr := node.Expr
		return func(rc *renderContext, yield func(string) bool) error {
			v, err := rc.eval(expr)
			if err != nil {
				return err
			}
			if !yield(rc.escape(v)) {
				return errStopped
			}
			return nil
		}
	case *IfNode:
		cond := node.Cond
		thenProc := t.compileNodes(node.Then)
		var elseProc proc
		if len(node.Else) > 0 {
			elseProc = t.compileNodes(node.Else)
		}
		return func(rc *renderContext, yield func(string) bool) error {
			v, err := rc.eval(cond)
			if err != nil {
				return err
			}
			if v.Truth() {
				return thenProc(rc, yield)
			}
			if elseProc != nil {
				return elseProc(rc, yield)
			}
			return nil
		}
	case *ForNode:
		return t.compileFor(node)
	case *BlockRefNode:
		name := node.Name
		pos := node.Pos
		return func(rc *renderContext, yield func(string) bool) error {
			p, ok := t.procs[name]
			if !ok {
				return renderErrf(pos, "undefined block %q", name)
			}
			// Delegation splices the block's fragments inline.
			return p(rc, yield)
		}
	case *CommentNode:
		return nil
	}
	return nil
}

func (t *Template) compileFor(node *ForNode) proc {
	iterExpr := node.Iter
	target := node.Target
	pos := node.Pos
	bodyProc := t.compileNodes(node.Body)
	var elseProc proc
	if len(node.Else) > 0 {
		elseProc = t.compileNodes(node.Else)
	}
	return func(rc *renderContext, yield func(string) bool) error {
		v, err := rc.eval(iterExpr)
		if err != nil {
			return err
		}
		items, err := iterateValue(v)
		if err != nil {
			return renderErrf(pos, "%v", err)
		}
		// The else branch runs exactly once, iff the iterable was empty.
		if len(items) == 0 {
			if elseProc != nil {
				return elseProc(rc, yield)
			}
			return nil
		}
		prev, shadowed := rc.vars[target]
		defer func() {
			if shadowed {
				rc.vars[target] = prev
			} else {
				delete(rc.vars, target)
			}
		}()
		for _, it := range items {
			rc.vars[target] = it
			if err := bodyProc(rc, yield); err != nil {
				return err
			}
		}
		return nil
	}
}

package rattle

import (
	"errors"
	"iter"
	"strings"
)

// errStopped signals that the fragment consumer stopped pulling; it never
// escapes to callers.
var errStopped = errors.New("fragment consumer stopped")

// renderContext is the per-render state: the environment's collaborators
// and the caller's variable store. One is created per render call, so a
// Template can serve concurrent renders.
type renderContext struct {
	env  *Environment
	vars Context
}

func (rc *renderContext) escape(v Value) string {
	if rc.env != nil && rc.env.Escape != nil {
		return rc.env.Escape(v)
	}
	return DefaultEscape(v)
}

// Fragments renders the template against ctx as a lazy, single-consumer
// sequence of output fragments. Consumption drives evaluation: a render
// failure surfaces as the final pair when the consumer reaches it, and
// abandoning the sequence is the only way to abort a render.
func (t *Template) Fragments(ctx Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rc := &renderContext{env: t.env, vars: ctx}
		if rc.vars == nil {
			rc.vars = Context{}
		}
		err := t.root(rc, func(s string) bool { return yield(s, nil) })
		if err != nil && !errors.Is(err, errStopped) {
			yield("", err)
		}
	}
}

// Render renders the template against ctx and concatenates the fragments.
func (t *Template) Render(ctx Context) (string, error) {
	var b strings.Builder
	for s, err := range t.Fragments(ctx) {
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// BlockFragments renders a single named block. Blocks are independently
// invocable sub-templates; an unknown name is a render error.
func (t *Template) BlockFragments(name string, ctx Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		p, ok := t.procs[name]
		if !ok {
			yield("", renderErrf(Position{}, "undefined block %q", name))
			return
		}
		rc := &renderContext{env: t.env, vars: ctx}
		if rc.vars == nil {
			rc.vars = Context{}
		}
		err := p(rc, func(s string) bool { return yield(s, nil) })
		if err != nil && !errors.Is(err, errStopped) {
			yield("", err)
		}
	}
}

// RenderBlock renders a single named block to a string.
func (t *Template) RenderBlock(name string, ctx Context) (string, error) {
	var b strings.Builder
	for s, err := range t.BlockFragments(name, ctx) {
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

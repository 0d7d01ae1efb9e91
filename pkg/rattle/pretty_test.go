package rattle

import (
	"strings"
	"testing"
)

func TestPretty(t *testing.T) {
	doc, err := Parse(`{% extends "base" %}{% block main %}{% if ok %}{{ n + 1 }}{% endif %}{% endblock %}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got := Pretty(doc)
	for _, want := range []string{
		`Extends("base")`,
		"Block(main)",
		"If(ok)",
		"Emit((n + 1))",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("dump missing %q:\n%s", want, got)
		}
	}
}

type countingVisitor struct{ n int }

func (c *countingVisitor) Visit(Node) error {
	c.n++
	return nil
}

func TestWalk(t *testing.T) {
	doc, err := Parse("{% for x in xs %}{% if x %}{{ x }}{% endif %}{% endfor %}tail")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	v := &countingVisitor{}
	for _, n := range doc.Nodes {
		if err := Walk(v, n); err != nil {
			t.Fatalf("walk failed: %v", err)
		}
	}
	// for + if + emit + trailing text
	if v.n != 4 {
		t.Fatalf("expected 4 visited nodes, got %d", v.n)
	}
}

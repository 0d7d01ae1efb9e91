package rattle

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitTagArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"x in items", []string{"x", "in", "items"}},
		{`x in "a b"`, []string{"x", "in", "a b"}},
		{`x in 'a b'`, []string{"x", "in", "a b"}},
		{`greet "dear reader"`, []string{"greet", "dear reader"}},
		{`f(a, b) g`, []string{"f(a, b)", "g"}},
		{`f((a), b)`, []string{"f((a), b)"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`"it's"`, []string{"it's"}},
		{`'say "hi"'`, []string{`say "hi"`}},
		{`pre"mid dle"post`, []string{`pre"mid dle"post`}},
		{"a\tb\nc", []string{"a", "b", "c"}},
		{`"(" x`, []string{"(", "x"}},
	}
	for _, tt := range tests {
		got, err := splitTagArgs(tt.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%q: wrong split (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSplitTagArgsErrors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a) b`, "closing un-open parenthesis"},
		{`a b\`, "un-used escaping"},
		{`a "b`, "un-closed double quote"},
		{`a 'b`, "un-closed single quote"},
		{`f(a (b`, "un-closed parenthesis (2 still open)"},
	}
	for _, tt := range tests {
		_, err := splitTagArgs(tt.in)
		if err == nil {
			t.Fatalf("%q: expected error", tt.in)
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%q: error %q does not mention %q", tt.in, err, tt.want)
		}
	}
}

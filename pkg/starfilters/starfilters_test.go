package starfilters

import (
	"strings"
	"testing"

	"github.com/Markush2010/rattle/pkg/rattle"
)

const filterSrc = `
def shout(s):
    return s.upper() + "!"

def wrap(s, prefix="[", suffix="]"):
    return prefix + s + suffix

def stats(xs):
    return {"count": len(xs), "total": sum(xs)}

greeting = "not a function"
`

func loadTestFilters(t *testing.T) rattle.Filters {
	t.Helper()
	filters, err := Load("filters.star", filterSrc)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return filters
}

func TestLoadExportsFunctionsOnly(t *testing.T) {
	filters := loadTestFilters(t)
	for _, name := range []string{"shout", "wrap", "stats"} {
		if _, ok := filters[name]; !ok {
			t.Fatalf("missing filter %q", name)
		}
	}
	if _, ok := filters["greeting"]; ok {
		t.Fatal("non-function global exported as filter")
	}
}

func TestLoadBadSource(t *testing.T) {
	if _, err := Load("broken.star", "def ("); err == nil {
		t.Fatal("expected error for unparsable source")
	}
}

func TestFiltersThroughEngine(t *testing.T) {
	env := rattle.NewEnvironment()
	for name, fn := range loadTestFilters(t) {
		env.Filters[name] = fn
	}
	tests := []struct {
		src  string
		want string
	}{
		{"{{ name|shout }}", "ADA!"},
		{"{{ name|wrap }}", "[ada]"},
		{"{{ name|wrap('<') }}", "<ada]"},
		{"{{ name|wrap(suffix='>') }}", "[ada>"},
		{"{{ (xs|stats)['total'] }}", "3"},
	}
	ctx := rattle.Context{
		"name": rattle.StringValue("ada"),
		"xs":   rattle.ListValue{rattle.IntValue(1), rattle.IntValue(2)},
	}
	for _, tt := range tests {
		tmpl, err := env.Compile(tt.src)
		if err != nil {
			t.Fatalf("%q: compile failed: %v", tt.src, err)
		}
		got, err := tmpl.Render(ctx)
		if err != nil {
			t.Fatalf("%q: render failed: %v", tt.src, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestValueRoundTrip(t *testing.T) {
	filters := loadTestFilters(t)
	out, err := filters["stats"]([]rattle.Value{
		rattle.ListValue{rattle.IntValue(3), rattle.IntValue(4)},
	}, nil)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	d, ok := out.(rattle.DictValue)
	if !ok {
		t.Fatalf("expected dict, got %T", out)
	}
	if d["count"] != rattle.IntValue(2) || d["total"] != rattle.IntValue(7) {
		t.Fatalf("unexpected stats: %v", d)
	}
}

func TestFilterRuntimeError(t *testing.T) {
	filters, err := Load("fail.star", "def boom(s):\n    fail('no good')\n")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	_, err = filters["boom"]([]rattle.Value{rattle.StringValue("x")}, nil)
	if err == nil || !strings.Contains(err.Error(), "no good") {
		t.Fatalf("expected failure message, got %v", err)
	}
}

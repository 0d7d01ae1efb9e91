package rattle

import "testing"

func TestDefaultFilters(t *testing.T) {
	tests := []struct {
		name   string
		args   []Value
		want   string
		hasErr bool
	}{
		{"upper", []Value{StringValue("hi")}, "HI", false},
		{"lower", []Value{StringValue("HI")}, "hi", false},
		{"trim", []Value{StringValue("  x  ")}, "x", false},
		{"title", []Value{StringValue("hello wide world")}, "Hello Wide World", false},
		{"title", []Value{StringValue("SHOUTED")}, "Shouted", false},
		{"default", []Value{StringValue(""), StringValue("fb")}, "fb", false},
		{"default", []Value{StringValue("v"), StringValue("fb")}, "v", false},
		{"default", []Value{StringValue("v")}, "", true},
		{"join", []Value{ListValue{IntValue(1), IntValue(2)}}, "1,2", false},
		{"join", []Value{ListValue{IntValue(1), IntValue(2)}, StringValue("-")}, "1-2", false},
		{"length", []Value{ListValue{IntValue(1)}}, "1", false},
		{"length", []Value{DictValue{"a": NoneValue{}}}, "1", false},
		{"first", []Value{ListValue{IntValue(7), IntValue(8)}}, "7", false},
		{"first", []Value{ListValue{}}, "", false},
		{"last", []Value{StringValue("abc")}, "c", false},
		{"upper", []Value{StringValue("a"), StringValue("b")}, "", true},
	}
	filters := DefaultFilters()
	for _, tt := range tests {
		fn, ok := filters[tt.name]
		if !ok {
			t.Fatalf("missing default filter %q", tt.name)
		}
		got, err := fn(tt.args, nil)
		if tt.hasErr {
			if err == nil {
				t.Fatalf("%s%v: expected error", tt.name, tt.args)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s%v: unexpected error: %v", tt.name, tt.args, err)
		}
		if got.String() != tt.want {
			t.Fatalf("%s%v: got %q, want %q", tt.name, tt.args, got, tt.want)
		}
	}
}

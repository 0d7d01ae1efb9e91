package rattle

import (
	"fmt"
	"strings"
)

// FilterFunc is a named transformation invocable from templates. For a
// filter application the piped operand arrives as args[0]; further
// positional and keyword arguments follow the call site.
type FilterFunc func(args []Value, kwargs map[string]Value) (Value, error)

// Filters maps dotted filter names to functions. The table is supplied by
// the host application; resolution happens by name at render time.
type Filters map[string]FilterFunc

// DefaultFilters provides a small set of common filters.
func DefaultFilters() Filters {
	return Filters{
		"upper": stringFilter(strings.ToUpper),
		"lower": stringFilter(strings.ToLower),
		"trim":  stringFilter(strings.TrimSpace),
		"title": stringFilter(titleCase),
		"default": func(args []Value, _ map[string]Value) (Value, error) {
			if err := wantArgs("default", args, 2); err != nil {
				return nil, err
			}
			if args[0].Truth() {
				return args[0], nil
			}
			return args[1], nil
		},
		"join": func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, fmt.Errorf("join expects an optional separator argument")
			}
			sep := ","
			if len(args) == 2 {
				sep = args[1].String()
			}
			items, err := iterateValue(args[0])
			if err != nil {
				return nil, err
			}
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, it.String())
			}
			return StringValue(strings.Join(parts, sep)), nil
		},
		"length": func(args []Value, _ map[string]Value) (Value, error) {
			if err := wantArgs("length", args, 1); err != nil {
				return nil, err
			}
			switch t := args[0].(type) {
			case StringValue:
				return IntValue(len(t)), nil
			case ListValue:
				return IntValue(len(t)), nil
			case DictValue:
				return IntValue(len(t)), nil
			}
			return IntValue(0), nil
		},
		"first": func(args []Value, _ map[string]Value) (Value, error) {
			if err := wantArgs("first", args, 1); err != nil {
				return nil, err
			}
			items, err := iterateValue(args[0])
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return NoneValue{}, nil
			}
			return items[0], nil
		},
		"last": func(args []Value, _ map[string]Value) (Value, error) {
			if err := wantArgs("last", args, 1); err != nil {
				return nil, err
			}
			items, err := iterateValue(args[0])
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				return NoneValue{}, nil
			}
			return items[len(items)-1], nil
		},
	}
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func stringFilter(f func(string) string) FilterFunc {
	return func(args []Value, _ map[string]Value) (Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("filter takes no arguments")
		}
		return StringValue(f(args[0].String())), nil
	}
}

func wantArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// Package starfilters implements the engine's filter-table collaborator in
// Starlark: the top-level functions of a Starlark file become template
// filters. Hosts get user-extensible filters without shipping Go code.
package starfilters

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/Markush2010/rattle/pkg/rattle"
)

// Load executes a Starlark file and returns its top-level functions as a
// filter table. src may be nil to read from filename, or a string/[]byte
// with the source text. Non-function globals are ignored.
func Load(filename string, src any) (rattle.Filters, error) {
	thread := &starlark.Thread{Name: "starfilters: " + filename}
	globals, err := starlark.ExecFile(thread, filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("executing filter file %s: %w", filename, err)
	}
	filters := rattle.Filters{}
	for name, v := range globals {
		if fn, ok := v.(starlark.Callable); ok {
			filters[name] = wrap(fn)
		}
	}
	return filters, nil
}

// wrap adapts a Starlark callable to the engine's filter signature. A
// fresh thread per invocation keeps concurrent renders independent.
func wrap(fn starlark.Callable) rattle.FilterFunc {
	return func(args []rattle.Value, kwargs map[string]rattle.Value) (rattle.Value, error) {
		tuple := make(starlark.Tuple, 0, len(args))
		for _, a := range args {
			tuple = append(tuple, toStarlark(a))
		}
		var kwTuples []starlark.Tuple
		for k, v := range kwargs {
			kwTuples = append(kwTuples, starlark.Tuple{starlark.String(k), toStarlark(v)})
		}
		thread := &starlark.Thread{Name: "starfilters: " + fn.Name()}
		out, err := starlark.Call(thread, fn, tuple, kwTuples)
		if err != nil {
			return nil, err
		}
		return fromStarlark(out), nil
	}
}

// toStarlark converts an engine value to a Starlark value.
func toStarlark(val rattle.Value) starlark.Value {
	switch v := val.(type) {
	case nil, rattle.NoneValue:
		return starlark.None
	case rattle.StringValue:
		return starlark.String(string(v))
	case rattle.IntValue:
		return starlark.MakeInt64(int64(v))
	case rattle.FloatValue:
		return starlark.Float(float64(v))
	case rattle.BoolValue:
		return starlark.Bool(bool(v))
	case rattle.ListValue:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = toStarlark(item)
		}
		return starlark.NewList(items)
	case rattle.DictValue:
		dict := starlark.NewDict(len(v))
		for key, value := range v {
			dict.SetKey(starlark.String(key), toStarlark(value))
		}
		return dict
	default:
		return starlark.String(val.String())
	}
}

// fromStarlark converts a Starlark value to an engine value.
func fromStarlark(val starlark.Value) rattle.Value {
	if val == nil || val == starlark.None {
		return rattle.NoneValue{}
	}
	switch v := val.(type) {
	case starlark.String:
		return rattle.StringValue(string(v))
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return rattle.IntValue(i)
		}
		return rattle.StringValue(v.String())
	case starlark.Float:
		return rattle.FloatValue(float64(v))
	case starlark.Bool:
		return rattle.BoolValue(bool(v))
	case *starlark.List:
		items := make(rattle.ListValue, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = fromStarlark(v.Index(i))
		}
		return items
	case *starlark.Dict:
		dict := make(rattle.DictValue)
		for _, item := range v.Items() {
			key, value := item[0], item[1]
			if keyStr, ok := key.(starlark.String); ok {
				dict[string(keyStr)] = fromStarlark(value)
			} else {
				dict[key.String()] = fromStarlark(value)
			}
		}
		return dict
	default:
		return rattle.StringValue(val.String())
	}
}

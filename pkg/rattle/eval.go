package rattle

import (
	"math"
	"strings"
)

// The evaluator walks expression ASTs against the render context. All
// lookup failures (missing name, missing attribute, bad subscript, unknown
// filter) are render errors, distinct from the compile-time syntax errors.

func (rc *renderContext) eval(e Expr) (Value, error) {
	switch n := e.(type) {
	case *LiteralExpr:
		return n.Value, nil
	case *LookupExpr:
		v, ok := rc.vars[n.Name]
		if !ok {
			return nil, renderErrf(n.Pos, "undefined name %q", n.Name)
		}
		return v, nil
	case *AttrExpr:
		base, err := rc.eval(n.Base)
		if err != nil {
			return nil, err
		}
		return getAttr(base, n.Name, n.Pos)
	case *IndexExpr:
		base, err := rc.eval(n.Base)
		if err != nil {
			return nil, err
		}
		idx, err := rc.eval(n.Index)
		if err != nil {
			return nil, err
		}
		return getItem(base, idx, n.Pos)
	case *BinaryExpr:
		return rc.evalBinary(n)
	case *CompareExpr:
		return rc.evalCompare(n)
	case *FilterExpr:
		fn, err := rc.lookupFilter(n.Name, n.Pos)
		if err != nil {
			return nil, err
		}
		args, kwargs, err := rc.evalArgs(n.Args, n.Kwargs)
		if err != nil {
			return nil, err
		}
		v, err := fn(args, kwargs)
		if err != nil {
			return nil, renderErrf(n.Pos, "filter %q: %v", n.Name, err)
		}
		return v, nil
	case *CallExpr:
		return rc.evalCall(n)
	}
	return nil, renderErrf(Position{}, "unhandled expression node %T", e)
}

// evalBinary covers arithmetic and the short-circuiting boolean operators.
// and/or return an operand, not a coerced boolean.
func (rc *renderContext) evalBinary(n *BinaryExpr) (Value, error) {
	switch n.Op {
	case "and":
		l, err := rc.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if !l.Truth() {
			return l, nil
		}
		return rc.eval(n.Right)
	case "or":
		l, err := rc.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if l.Truth() {
			return l, nil
		}
		return rc.eval(n.Right)
	}
	l, err := rc.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := rc.eval(n.Right)
	if err != nil {
		return nil, err
	}
	return applyArith(n.Op, l, r, n.Pos)
}

func applyArith(op string, l, r Value, pos Position) (Value, error) {
	if ls, lok := l.(StringValue); lok {
		if rs, rok := r.(StringValue); rok && op == "+" {
			return ls + rs, nil
		}
	}
	if ll, lok := l.(ListValue); lok {
		if rl, rok := r.(ListValue); rok && op == "+" {
			out := make(ListValue, 0, len(ll)+len(rl))
			out = append(out, ll...)
			out = append(out, rl...)
			return out, nil
		}
	}
	li, lInt := l.(IntValue)
	ri, rInt := r.(IntValue)
	if lInt && rInt {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, renderErrf(pos, "division by zero")
			}
			if li%ri == 0 {
				return li / ri, nil
			}
			return FloatValue(float64(li) / float64(ri)), nil
		case "%":
			if ri == 0 {
				return nil, renderErrf(pos, "division by zero")
			}
			return li % ri, nil
		}
	}
	lf, lok := numeric(l)
	rf, rok := numeric(r)
	if !lok || !rok {
		return nil, renderErrf(pos, "unsupported operand kinds for %s: %s and %s", op, kindName(l), kindName(r))
	}
	switch op {
	case "+":
		return FloatValue(lf + rf), nil
	case "-":
		return FloatValue(lf - rf), nil
	case "*":
		return FloatValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return nil, renderErrf(pos, "division by zero")
		}
		return FloatValue(lf / rf), nil
	case "%":
		if rf == 0 {
			return nil, renderErrf(pos, "division by zero")
		}
		return FloatValue(math.Mod(lf, rf)), nil
	}
	return nil, renderErrf(pos, "unknown operator %q", op)
}

func (rc *renderContext) evalCompare(n *CompareExpr) (Value, error) {
	l, err := rc.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := rc.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "==":
		return BoolValue(valueEqual(l, r)), nil
	case "!=":
		return BoolValue(!valueEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		c, err := orderValues(l, r, n.Pos)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "<":
			return BoolValue(c < 0), nil
		case "<=":
			return BoolValue(c <= 0), nil
		case ">":
			return BoolValue(c > 0), nil
		}
		return BoolValue(c >= 0), nil
	case "in":
		ok, err := contains(r, l, n.Pos)
		return BoolValue(ok), err
	case "not-in":
		ok, err := contains(r, l, n.Pos)
		return BoolValue(!ok), err
	case "is":
		return BoolValue(sameKind(l, r) && valueEqual(l, r)), nil
	case "is-not":
		return BoolValue(!(sameKind(l, r) && valueEqual(l, r))), nil
	}
	return nil, renderErrf(n.Pos, "unknown comparison %q", n.Op)
}

// evalCall resolves the callee and invokes it. A bare name resolves
// against the filter table first, then against a callable context value.
func (rc *renderContext) evalCall(n *CallExpr) (Value, error) {
	args, kwargs, err := rc.evalArgs(n.Args, n.Kwargs)
	if err != nil {
		return nil, err
	}
	if lu, ok := n.Callee.(*LookupExpr); ok {
		if rc.env != nil && rc.env.Filters != nil {
			if fn, ok := rc.env.Filters[lu.Name]; ok {
				v, err := fn(args, kwargs)
				if err != nil {
					return nil, renderErrf(n.Pos, "function %q: %v", lu.Name, err)
				}
				return v, nil
			}
		}
		if v, ok := rc.vars[lu.Name]; ok {
			if c, ok := v.(CallableValue); ok {
				return callCallable(c, lu.Name, args, kwargs, n.Pos)
			}
			return nil, renderErrf(n.Pos, "%q is not callable", lu.Name)
		}
		return nil, renderErrf(n.Pos, "unknown function %q", lu.Name)
	}
	callee, err := rc.eval(n.Callee)
	if err != nil {
		return nil, err
	}
	if c, ok := callee.(CallableValue); ok {
		return callCallable(c, n.Callee.String(), args, kwargs, n.Pos)
	}
	return nil, renderErrf(n.Pos, "%s value is not callable", kindName(callee))
}

func callCallable(c CallableValue, name string, args []Value, kwargs map[string]Value, pos Position) (Value, error) {
	v, err := c.Fn(args, kwargs)
	if err != nil {
		return nil, renderErrf(pos, "calling %s: %v", name, err)
	}
	return v, nil
}

func (rc *renderContext) evalArgs(argExprs []Expr, kwargExprs []Kwarg) ([]Value, map[string]Value, error) {
	args := make([]Value, 0, len(argExprs))
	for _, a := range argExprs {
		v, err := rc.eval(a)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, v)
	}
	var kwargs map[string]Value
	if len(kwargExprs) > 0 {
		kwargs = make(map[string]Value, len(kwargExprs))
		for _, kw := range kwargExprs {
			v, err := rc.eval(kw.Value)
			if err != nil {
				return nil, nil, err
			}
			kwargs[kw.Name] = v
		}
	}
	return args, kwargs, nil
}

func (rc *renderContext) lookupFilter(name string, pos Position) (FilterFunc, error) {
	if rc.env != nil && rc.env.Filters != nil {
		if fn, ok := rc.env.Filters[name]; ok {
			return fn, nil
		}
	}
	return nil, renderErrf(pos, "unknown filter %q", name)
}

func getAttr(v Value, name string, pos Position) (Value, error) {
	if d, ok := v.(DictValue); ok {
		if w, ok := d[name]; ok {
			return w, nil
		}
		return nil, renderErrf(pos, "value has no attribute %q", name)
	}
	return nil, renderErrf(pos, "%s value has no attributes", kindName(v))
}

func getItem(v, key Value, pos Position) (Value, error) {
	switch t := v.(type) {
	case DictValue:
		k, ok := key.(StringValue)
		if !ok {
			return nil, renderErrf(pos, "dict subscript must be a string, got %s", kindName(key))
		}
		if w, ok := t[string(k)]; ok {
			return w, nil
		}
		return nil, renderErrf(pos, "key %q not found", string(k))
	case ListValue:
		i, err := subscriptIndex(key, len(t), pos)
		if err != nil {
			return nil, err
		}
		return t[i], nil
	case StringValue:
		runes := []rune(string(t))
		i, err := subscriptIndex(key, len(runes), pos)
		if err != nil {
			return nil, err
		}
		return StringValue(string(runes[i])), nil
	}
	return nil, renderErrf(pos, "%s value is not subscriptable", kindName(v))
}

// subscriptIndex validates an integer subscript, supporting negative
// indices counted from the end.
func subscriptIndex(key Value, n int, pos Position) (int, error) {
	k, ok := key.(IntValue)
	if !ok {
		return 0, renderErrf(pos, "subscript must be an integer, got %s", kindName(key))
	}
	i := int(k)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, renderErrf(pos, "index %d out of range (length %d)", int(k), n)
	}
	return i, nil
}

// orderValues compares two values, returning -1, 0, or 1. Numbers compare
// numerically, strings lexicographically; anything else is an error.
func orderValues(l, r Value, pos Position) (int, error) {
	if lf, lok := numeric(l); lok {
		if rf, rok := numeric(r); rok {
			switch {
			case lf < rf:
				return -1, nil
			case lf > rf:
				return 1, nil
			}
			return 0, nil
		}
	}
	if ls, lok := l.(StringValue); lok {
		if rs, rok := r.(StringValue); rok {
			return strings.Compare(string(ls), string(rs)), nil
		}
	}
	return 0, renderErrf(pos, "cannot order %s and %s values", kindName(l), kindName(r))
}

// contains implements membership: substring for strings, element for
// lists, key for dicts.
func contains(container, needle Value, pos Position) (bool, error) {
	switch t := container.(type) {
	case StringValue:
		s, ok := needle.(StringValue)
		if !ok {
			return false, renderErrf(pos, "string membership needs a string, got %s", kindName(needle))
		}
		return strings.Contains(string(t), string(s)), nil
	case ListValue:
		for _, v := range t {
			if valueEqual(v, needle) {
				return true, nil
			}
		}
		return false, nil
	case DictValue:
		s, ok := needle.(StringValue)
		if !ok {
			return false, nil
		}
		_, ok = t[string(s)]
		return ok, nil
	}
	return false, renderErrf(pos, "%s value does not support membership tests", kindName(container))
}

func sameKind(a, b Value) bool { return kindName(a) == kindName(b) }

func kindName(v Value) string {
	switch v.(type) {
	case NoneValue:
		return "none"
	case BoolValue:
		return "bool"
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case StringValue:
		return "string"
	case ListValue:
		return "list"
	case DictValue:
		return "dict"
	case CallableValue:
		return "function"
	}
	return "unknown"
}

package rattle

import (
	"strconv"
	"strings"
)

// The expression parser consumes the tokens of exactly one expression and
// yields its AST root. Precedence, loosest binding first: filter pipes,
// and/or, comparisons, additive, multiplicative, postfix subscript,
// attribute and call, primary. All infix levels are left-associative and
// comparisons do not chain: each operator produces one CompareExpr.

type exprParser struct {
	toks []exprToken
	i    int
}

// parseExpression parses one complete expression from src, with token
// positions offset by base so errors point into the enclosing template.
func parseExpression(src string, base Position) (Expr, error) {
	toks, err := scanExprTokens(src, base)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	e, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != exprEOF {
		return nil, syntaxErrf(tok.pos, "unexpected token %q after expression", tok.val)
	}
	return e, nil
}

func (p *exprParser) peek() exprToken { return p.toks[p.i] }

func (p *exprParser) next() exprToken {
	tok := p.toks[p.i]
	if tok.kind != exprEOF {
		p.i++
	}
	return tok
}

func (p *exprParser) peekOp(op string) bool {
	tok := p.peek()
	return tok.kind == exprOp && tok.val == op
}

func (p *exprParser) peekName(name string) bool {
	tok := p.peek()
	return tok.kind == exprName && tok.val == name
}

func (p *exprParser) expectOp(op string) (exprToken, error) {
	tok := p.next()
	if tok.kind != exprOp || tok.val != op {
		return tok, syntaxErrf(tok.pos, "expected %q, found %q", op, tok.val)
	}
	return tok, nil
}

func (p *exprParser) parsePipe() (Expr, error) {
	left, err := p.parseBool()
	if err != nil {
		return nil, err
	}
	for p.peekOp("|") {
		pos := p.next().pos
		name, err := p.parseFilterName()
		if err != nil {
			return nil, err
		}
		f := &FilterExpr{Name: name, Args: []Expr{left}, Pos: pos}
		switch {
		case p.peekOp(":"):
			p.next()
			lit, err := p.parseLiteralArg()
			if err != nil {
				return nil, err
			}
			f.Args = append(f.Args, lit)
		case p.peekOp("("):
			p.next()
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			f.Args = append(f.Args, args...)
			f.Kwargs = kwargs
		}
		left = f
	}
	return left, nil
}

// parseFilterName reads a possibly dotted filter name: name(.name)*.
func (p *exprParser) parseFilterName() (string, error) {
	tok := p.next()
	if tok.kind != exprName {
		return "", syntaxErrf(tok.pos, "expected filter name, found %q", tok.val)
	}
	parts := []string{tok.val}
	for p.peekOp(".") {
		p.next()
		tok = p.next()
		if tok.kind != exprName {
			return "", syntaxErrf(tok.pos, "expected name after '.', found %q", tok.val)
		}
		parts = append(parts, tok.val)
	}
	return strings.Join(parts, "."), nil
}

// parseLiteralArg handles the shorthand filter argument form |name: arg,
// which accepts exactly one literal or name.
func (p *exprParser) parseLiteralArg() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case exprNumber:
		return numberLiteral(tok)
	case exprString:
		return &LiteralExpr{Value: StringValue(tok.val), Pos: tok.pos}, nil
	case exprName:
		if isKeyword(tok.val) {
			return nil, syntaxErrf(tok.pos, "unexpected keyword %q", tok.val)
		}
		return &LookupExpr{Name: tok.val, Pos: tok.pos}, nil
	}
	return nil, syntaxErrf(tok.pos, "expected literal filter argument, found %q", tok.val)
}

func (p *exprParser) parseBool() (Expr, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.peekName("and") || p.peekName("or") {
		tok := p.next()
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: tok.val, Left: left, Right: right, Pos: tok.pos}
	}
	return left, nil
}

func (p *exprParser) parseCompare() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, pos, ok := p.compareOp()
		if !ok {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &CompareExpr{Op: op, Left: left, Right: right, Pos: pos}
	}
}

// compareOp consumes a comparison operator if one is next, combining the
// two-word forms "not in" and "is not".
func (p *exprParser) compareOp() (string, Position, bool) {
	tok := p.peek()
	switch tok.kind {
	case exprOp:
		switch tok.val {
		case "==", "!=", "<", "<=", ">", ">=":
			p.next()
			return tok.val, tok.pos, true
		}
	case exprName:
		switch tok.val {
		case "in":
			p.next()
			return "in", tok.pos, true
		case "not":
			if p.i+1 < len(p.toks) && p.toks[p.i+1].kind == exprName && p.toks[p.i+1].val == "in" {
				p.next()
				p.next()
				return "not-in", tok.pos, true
			}
		case "is":
			p.next()
			if p.peekName("not") {
				p.next()
				return "is-not", tok.pos, true
			}
			return "is", tok.pos, true
		}
	}
	return "", Position{}, false
}

func (p *exprParser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peekOp("+") || p.peekOp("-") {
		tok := p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: tok.val, Left: left, Right: right, Pos: tok.pos}
	}
	return left, nil
}

func (p *exprParser) parseMultiplicative() (Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.peekOp("*") || p.peekOp("/") || p.peekOp("%") {
		tok := p.next()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: tok.val, Left: left, Right: right, Pos: tok.pos}
	}
	return left, nil
}

// parsePostfix parses a primary followed by any run of postfix forms:
// attribute access, subscripting, and calls, which bind tighter than any
// infix operator.
func (p *exprParser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.peekOp("."):
			pos := p.next().pos
			tok := p.next()
			if tok.kind != exprName {
				return nil, syntaxErrf(tok.pos, "expected name after '.', found %q", tok.val)
			}
			e = &AttrExpr{Base: e, Name: tok.val, Pos: pos}
		case p.peekOp("["):
			pos := p.next().pos
			idx, err := p.parsePipe()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp("]"); err != nil {
				return nil, err
			}
			e = &IndexExpr{Base: e, Index: idx, Pos: pos}
		case p.peekOp("("):
			pos := p.next().pos
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			e = &CallExpr{Callee: e, Args: args, Kwargs: kwargs, Pos: pos}
		default:
			return e, nil
		}
	}
}

func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case exprNumber:
		return numberLiteral(tok)
	case exprString:
		return &LiteralExpr{Value: StringValue(tok.val), Pos: tok.pos}, nil
	case exprName:
		if isKeyword(tok.val) {
			return nil, syntaxErrf(tok.pos, "unexpected keyword %q", tok.val)
		}
		return &LookupExpr{Name: tok.val, Pos: tok.pos}, nil
	case exprOp:
		if tok.val == "(" {
			e, err := p.parsePipe()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	case exprEOF:
		return nil, syntaxErrf(tok.pos, "unexpected end of expression")
	}
	return nil, syntaxErrf(tok.pos, "expression must begin with a literal or name, found %q", tok.val)
}

// parseCallArgs parses the contents of a call after the opening paren:
// zero or more positional arguments followed by zero or more keyword
// arguments, never interleaved.
func (p *exprParser) parseCallArgs() (args []Expr, kwargs []Kwarg, err error) {
	if p.peekOp(")") {
		p.next()
		return nil, nil, nil
	}
	for {
		if p.kwargNext() {
			name := p.next()
			p.next() // '='
			val, err := p.parsePipe()
			if err != nil {
				return nil, nil, err
			}
			kwargs = append(kwargs, Kwarg{Name: name.val, Value: val})
		} else {
			if len(kwargs) > 0 {
				tok := p.peek()
				return nil, nil, syntaxErrf(tok.pos, "positional argument after keyword argument")
			}
			arg, err := p.parsePipe()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
		}
		tok := p.next()
		if tok.kind == exprOp && tok.val == ")" {
			return args, kwargs, nil
		}
		if tok.kind != exprOp || tok.val != "," {
			return nil, nil, syntaxErrf(tok.pos, "expected ',' or ')', found %q", tok.val)
		}
	}
}

// kwargNext reports whether NAME = expr comes next, without consuming.
func (p *exprParser) kwargNext() bool {
	tok := p.peek()
	if tok.kind != exprName || isKeyword(tok.val) {
		return false
	}
	if p.i+1 >= len(p.toks) {
		return false
	}
	eq := p.toks[p.i+1]
	return eq.kind == exprOp && eq.val == "="
}

func numberLiteral(tok exprToken) (Expr, error) {
	if strings.ContainsAny(tok.val, ".eE") {
		f, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, syntaxErrf(tok.pos, "bad number literal %q", tok.val)
		}
		return &LiteralExpr{Value: FloatValue(f), Pos: tok.pos}, nil
	}
	n, err := strconv.ParseInt(tok.val, 10, 64)
	if err != nil {
		return nil, syntaxErrf(tok.pos, "bad number literal %q", tok.val)
	}
	return &LiteralExpr{Value: IntValue(n), Pos: tok.pos}, nil
}

func isKeyword(name string) bool {
	switch name {
	case "and", "or", "in", "is", "not":
		return true
	}
	return false
}

package rattle

// The expression lexer tokenizes the content of a {{ }} region or a tag
// argument that needs re-parsing as an expression. Positions are carried
// over from the enclosing template so diagnostics point at the original
// source, not at offsets within the extracted substring.

type exprScanner struct {
	src  string
	i    int
	line int
	col  int
}

func newExprScanner(src string, base Position) *exprScanner {
	return &exprScanner{src: src, line: base.Line, col: base.Col}
}

func (s *exprScanner) pos() Position { return Position{Line: s.line, Col: s.col} }

func (s *exprScanner) advance() {
	if s.i < len(s.src) {
		if s.src[s.i] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.i++
	}
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool { return isNameStart(b) || isDigit(b) }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanExprTokens tokenizes an entire expression region. The resulting
// slice always ends with an exprEOF token.
func scanExprTokens(src string, base Position) ([]exprToken, error) {
	s := newExprScanner(src, base)
	var toks []exprToken
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == exprEOF {
			return toks, nil
		}
	}
}

func (s *exprScanner) next() (exprToken, error) {
	for s.i < len(s.src) && isSpaceByte(s.src[s.i]) {
		s.advance()
	}
	if s.i >= len(s.src) {
		return exprToken{kind: exprEOF, pos: s.pos()}, nil
	}
	pos := s.pos()
	b := s.src[s.i]
	switch {
	case isNameStart(b):
		start := s.i
		for s.i < len(s.src) && isNameByte(s.src[s.i]) {
			s.advance()
		}
		return exprToken{kind: exprName, val: s.src[start:s.i], pos: pos}, nil
	case isDigit(b):
		return s.scanNumber(pos), nil
	case b == '\'' || b == '"':
		return s.scanString(b, pos)
	}
	// Two-character operators first.
	if s.i+1 < len(s.src) {
		two := s.src[s.i : s.i+2]
		switch two {
		case "==", "!=", "<=", ">=":
			s.advance()
			s.advance()
			return exprToken{kind: exprOp, val: two, pos: pos}, nil
		}
	}
	switch b {
	case '+', '-', '*', '/', '%', '.', '[', ']', '(', ')', ',', '=', '|', ':', '<', '>':
		s.advance()
		return exprToken{kind: exprOp, val: string(b), pos: pos}, nil
	}
	return exprToken{}, &LexError{Pos: pos, Msg: "unexpected character " + string(b) + " in expression"}
}

func (s *exprScanner) scanNumber(pos Position) exprToken {
	start := s.i
	for s.i < len(s.src) && isDigit(s.src[s.i]) {
		s.advance()
	}
	if s.i < len(s.src) && s.src[s.i] == '.' {
		s.advance()
		for s.i < len(s.src) && isDigit(s.src[s.i]) {
			s.advance()
		}
	}
	if s.i < len(s.src) && (s.src[s.i] == 'e' || s.src[s.i] == 'E') {
		j := s.i + 1
		if j < len(s.src) && (s.src[j] == '+' || s.src[j] == '-') {
			j++
		}
		if j < len(s.src) && isDigit(s.src[j]) {
			for s.i < j {
				s.advance()
			}
			for s.i < len(s.src) && isDigit(s.src[s.i]) {
				s.advance()
			}
		}
	}
	return exprToken{kind: exprNumber, val: s.src[start:s.i], pos: pos}
}

// scanString reads a quoted literal. The content between the quotes is
// taken verbatim; there are no escape sequences.
func (s *exprScanner) scanString(quote byte, pos Position) (exprToken, error) {
	s.advance() // opening quote
	start := s.i
	for s.i < len(s.src) {
		if s.src[s.i] == quote {
			val := s.src[start:s.i]
			s.advance()
			return exprToken{kind: exprString, val: val, pos: pos}, nil
		}
		s.advance()
	}
	return exprToken{}, &LexError{Pos: pos, Msg: "unterminated string literal"}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

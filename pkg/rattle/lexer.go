package rattle

// The structural lexer scans template source and yields tokens for literal
// content and the three delimiter forms: variables {{ }}, tags {% %}, and
// comments {# #}. Tokenization inside a delimiter pair is handled by the
// expression lexer in scan.go; the structural lexer only hands the parser
// the raw content between a matched open and close.

type lexer struct {
	src []byte
	i   int
	n   int

	line    int // 1-based line of src[i]
	lineOff int // byte offset of the start of the current line
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, n: len(src), line: 1}
}

// pos reports the position of src[i].
func (l *lexer) pos() Position {
	return Position{Line: l.line, Col: l.i - l.lineOff + 1}
}

// advance moves past k bytes, keeping line accounting current.
func (l *lexer) advance(k int) {
	for j := 0; j < k && l.i < l.n; j++ {
		if l.src[l.i] == '\n' {
			l.line++
			l.lineOff = l.i + 1
		}
		l.i++
	}
}

func (l *lexer) hasPrefix(s string) bool {
	if l.i+len(s) > l.n {
		return false
	}
	for j := 0; j < len(s); j++ {
		if l.src[l.i+j] != s[j] {
			return false
		}
	}
	return true
}

// nextOutside scans in literal-content context and emits either a content
// token running up to the next opening delimiter, an opening delimiter
// token, or EOF.
func (l *lexer) nextOutside() token {
	if l.i >= l.n {
		return token{kind: tokEOF, pos: l.pos()}
	}
	start := l.i
	startPos := l.pos()
	for l.i < l.n {
		var kind tokenKind
		switch {
		case l.hasPrefix("{{"):
			kind = tokVarStart
		case l.hasPrefix("{%"):
			kind = tokTagStart
		case l.hasPrefix("{#"):
			kind = tokCommentStart
		default:
			l.advance(1)
			continue
		}
		if l.i > start {
			return token{kind: tokContent, val: string(l.src[start:l.i]), pos: startPos}
		}
		pos := l.pos()
		l.advance(2)
		return token{kind: kind, pos: pos}
	}
	return token{kind: tokContent, val: string(l.src[start:]), pos: startPos}
}

// nextInside scans inside a delimiter pair of the given closing kind,
// returning the content token before the close, the closing token itself,
// or EOF if the source ends first.
func (l *lexer) nextInside(close tokenKind) token {
	if l.i >= l.n {
		return token{kind: tokEOF, pos: l.pos()}
	}
	var delim string
	switch close {
	case tokVarEnd:
		delim = "}}"
	case tokTagEnd:
		delim = "%}"
	case tokCommentEnd:
		delim = "#}"
	}
	start := l.i
	startPos := l.pos()
	for l.i < l.n {
		if l.hasPrefix(delim) {
			if l.i > start {
				return token{kind: tokContent, val: string(l.src[start:l.i]), pos: startPos}
			}
			pos := l.pos()
			l.advance(2)
			return token{kind: close, pos: pos}
		}
		l.advance(1)
	}
	// Unterminated delimiter; hand back the remaining content, then EOF.
	if start < l.n {
		return token{kind: tokContent, val: string(l.src[start:]), pos: startPos}
	}
	return token{kind: tokEOF, pos: l.pos()}
}

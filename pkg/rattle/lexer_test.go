package rattle

import "testing"

func collectOutside(t *testing.T, src string) []token {
	t.Helper()
	l := newLexer([]byte(src))
	var toks []token
	for {
		tok := l.nextOutside()
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks
		}
		switch tok.kind {
		case tokVarStart, tokTagStart, tokCommentStart:
			close := tokVarEnd
			switch tok.kind {
			case tokTagStart:
				close = tokTagEnd
			case tokCommentStart:
				close = tokCommentEnd
			}
			for {
				inner := l.nextInside(close)
				toks = append(toks, inner)
				if inner.kind == close || inner.kind == tokEOF {
					break
				}
			}
		}
	}
}

func TestLexerPlainContent(t *testing.T) {
	toks := collectOutside(t, "hello world")
	if len(toks) != 2 {
		t.Fatalf("expected content + EOF, got %d tokens", len(toks))
	}
	if toks[0].kind != tokContent || toks[0].val != "hello world" {
		t.Fatalf("unexpected first token: %v %q", toks[0].kind, toks[0].val)
	}
}

func TestLexerDelimiters(t *testing.T) {
	tests := []struct {
		src  string
		want []tokenKind
	}{
		{"{{ x }}", []tokenKind{tokVarStart, tokContent, tokVarEnd, tokEOF}},
		{"{% if x %}", []tokenKind{tokTagStart, tokContent, tokTagEnd, tokEOF}},
		{"{# note #}", []tokenKind{tokCommentStart, tokContent, tokCommentEnd, tokEOF}},
		{"a{{x}}b", []tokenKind{tokContent, tokVarStart, tokContent, tokVarEnd, tokContent, tokEOF}},
		{"{{}}", []tokenKind{tokVarStart, tokVarEnd, tokEOF}},
	}
	for _, tt := range tests {
		toks := collectOutside(t, tt.src)
		if len(toks) != len(tt.want) {
			t.Fatalf("%q: expected %d tokens, got %d", tt.src, len(tt.want), len(toks))
		}
		for i, k := range tt.want {
			if toks[i].kind != k {
				t.Fatalf("%q: token %d: expected %v, got %v", tt.src, i, k, toks[i].kind)
			}
		}
	}
}

func TestLexerPositions(t *testing.T) {
	toks := collectOutside(t, "ab\ncd{{ x }}")
	if toks[0].pos != (Position{Line: 1, Col: 1}) {
		t.Fatalf("content position: got %s", toks[0].pos)
	}
	if toks[1].kind != tokVarStart {
		t.Fatalf("expected var start, got %v", toks[1].kind)
	}
	if toks[1].pos != (Position{Line: 2, Col: 3}) {
		t.Fatalf("delimiter position: got %s", toks[1].pos)
	}
}

func TestLexerUnterminatedDelimiter(t *testing.T) {
	l := newLexer([]byte("{{ x"))
	if tok := l.nextOutside(); tok.kind != tokVarStart {
		t.Fatalf("expected var start, got %v", tok.kind)
	}
	if tok := l.nextInside(tokVarEnd); tok.kind != tokContent || tok.val != " x" {
		t.Fatalf("expected trailing content, got %v %q", tok.kind, tok.val)
	}
	if tok := l.nextInside(tokVarEnd); tok.kind != tokEOF {
		t.Fatalf("expected EOF, got %v", tok.kind)
	}
}

func TestExprScannerTokens(t *testing.T) {
	toks, err := scanExprTokens(`a.b == 'hi' and n >= 1.5`, Position{Line: 1, Col: 1})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	want := []struct {
		kind exprTokenKind
		val  string
	}{
		{exprName, "a"}, {exprOp, "."}, {exprName, "b"},
		{exprOp, "=="}, {exprString, "hi"},
		{exprName, "and"}, {exprName, "n"},
		{exprOp, ">="}, {exprNumber, "1.5"},
		{exprEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, w := range want {
		if toks[i].kind != w.kind || toks[i].val != w.val {
			t.Fatalf("token %d: expected %v %q, got %v %q", i, w.kind, w.val, toks[i].kind, toks[i].val)
		}
	}
}

func TestExprScannerBasePosition(t *testing.T) {
	toks, err := scanExprTokens("x + y", Position{Line: 3, Col: 10})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if toks[0].pos != (Position{Line: 3, Col: 10}) {
		t.Fatalf("first token position: got %s", toks[0].pos)
	}
	if toks[1].pos != (Position{Line: 3, Col: 12}) {
		t.Fatalf("operator position: got %s", toks[1].pos)
	}
}

func TestExprScannerErrors(t *testing.T) {
	for _, src := range []string{"'open", `"open`, "a ? b"} {
		if _, err := scanExprTokens(src, Position{Line: 1, Col: 1}); err == nil {
			t.Fatalf("%q: expected lex error", src)
		}
	}
}

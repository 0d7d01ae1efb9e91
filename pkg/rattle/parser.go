package rattle

import "strings"

// Parse parses template source into a Document. Block bodies are
// registered in the Document's block map; an {% extends %} tag records the
// parent reference for the resolver without aborting the parse, so the
// child's block overrides are still collected.
func Parse(src string) (*Document, error) {
	return parseLevel(src, 0)
}

func parseLevel(src string, level int) (*Document, error) {
	p := &parser{
		l:  newLexer([]byte(src)),
		st: &parserState{level: level, blocks: map[string][]Node{}},
	}
	nodes, end, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if end.name != "" {
		return nil, syntaxErrf(end.pos, "unexpected tag %q", end.name)
	}
	return &Document{
		Nodes:      nodes,
		Blocks:     p.st.blocks,
		BlockOrder: p.st.order,
		Extends:    p.st.baseRef,
	}, nil
}

// parserState is the per-template parse context threaded through nested
// productions: the inheritance level, the recorded parent reference, and
// the block registry with definition order.
type parserState struct {
	level   int
	baseRef string
	blocks  map[string][]Node
	order   []string
}

func (st *parserState) addBlock(name string, body []Node, pos Position) error {
	if _, ok := st.blocks[name]; ok {
		return &DuplicateBlockError{Name: name, Pos: pos}
	}
	st.blocks[name] = body
	st.order = append(st.order, name)
	return nil
}

type parser struct {
	l  *lexer
	st *parserState
}

// endTag is the closing tag a body production stopped at.
type endTag struct {
	name string
	pos  Position
}

// parseNodes parses until a tag named in until is encountered, or EOF when
// until is nil. Reaching EOF with until non-nil is a syntax error reported
// by the caller, which knows which end tag it wanted.
func (p *parser) parseNodes(until map[string]bool) ([]Node, endTag, error) {
	var nodes []Node
	for {
		tok := p.l.nextOutside()
		switch tok.kind {
		case tokEOF:
			return nodes, endTag{}, nil
		case tokContent:
			if tok.val != "" {
				nodes = append(nodes, &TextNode{Text: tok.val, Pos: tok.pos})
			}
		case tokVarStart:
			content, pos, err := p.readInside(tokVarEnd, tok.pos, "{{")
			if err != nil {
				return nil, endTag{}, err
			}
			expr, err := parseExpression(content, pos)
			if err != nil {
				return nil, endTag{}, err
			}
			nodes = append(nodes, &EmitNode{Expr: expr, Pos: tok.pos})
		case tokCommentStart:
			if _, _, err := p.readInside(tokCommentEnd, tok.pos, "{#"); err != nil {
				return nil, endTag{}, err
			}
			nodes = append(nodes, &CommentNode{Pos: tok.pos})
		case tokTagStart:
			content, pos, err := p.readInside(tokTagEnd, tok.pos, "{%")
			if err != nil {
				return nil, endTag{}, err
			}
			name, args := splitNameArgs(content)
			if name == "" {
				return nil, endTag{}, syntaxErrf(tok.pos, "empty tag")
			}
			if until[name] {
				return nodes, endTag{name: name, pos: tok.pos}, nil
			}
			node, err := p.parseTag(name, args, tok.pos, pos, until != nil)
			if err != nil {
				return nil, endTag{}, err
			}
			if node != nil {
				nodes = append(nodes, node)
			}
		default:
			return nil, endTag{}, syntaxErrf(tok.pos, "unexpected token %v", tok.kind)
		}
	}
}

// readInside collects the raw content between an opening delimiter and its
// close. The returned position is that of the first content byte.
func (p *parser) readInside(close tokenKind, openPos Position, openText string) (string, Position, error) {
	var b strings.Builder
	contentPos := p.l.pos()
	for {
		tok := p.l.nextInside(close)
		switch tok.kind {
		case tokContent:
			if b.Len() == 0 {
				contentPos = tok.pos
			}
			b.WriteString(tok.val)
		case close:
			return b.String(), contentPos, nil
		case tokEOF:
			return "", contentPos, &LexError{Pos: openPos, Msg: "unterminated " + openText + " delimiter"}
		}
	}
}

func (p *parser) parseTag(name, args string, tagPos, argsPos Position, nested bool) (Node, error) {
	switch name {
	case "if":
		return p.parseIf(args, tagPos, argsPos)
	case "for":
		return p.parseFor(args, tagPos, argsPos)
	case "block":
		return p.parseBlock(args, tagPos)
	case "extends":
		return nil, p.parseExtends(args, tagPos, nested)
	case "else", "empty", "endif", "endfor", "endblock":
		return nil, syntaxErrf(tagPos, "unexpected tag %q", name)
	}
	return nil, syntaxErrf(tagPos, "unknown tag %q", name)
}

func (p *parser) parseIf(args string, tagPos, argsPos Position) (Node, error) {
	cond, err := parseExpression(args, argsPos)
	if err != nil {
		return nil, err
	}
	body, end, err := p.parseNodes(map[string]bool{"else": true, "endif": true})
	if err != nil {
		return nil, err
	}
	n := &IfNode{Cond: cond, Then: body, Pos: tagPos}
	if end.name == "else" {
		n.Else, end, err = p.parseNodes(map[string]bool{"endif": true})
		if err != nil {
			return nil, err
		}
	}
	if end.name != "endif" {
		return nil, syntaxErrf(tagPos, "missing {%% endif %%} for if tag")
	}
	return n, nil
}

func (p *parser) parseFor(args string, tagPos, argsPos Position) (Node, error) {
	parts, err := splitTagArgs(args)
	if err != nil {
		return nil, &LexError{Pos: argsPos, Msg: err.Error()}
	}
	if len(parts) != 3 || parts[1] != "in" {
		return nil, syntaxErrf(tagPos, "for tag expects 'target in iterable', got %q", args)
	}
	iter, err := parseExpression(parts[2], argsPos)
	if err != nil {
		return nil, err
	}
	// else and empty are both accepted as the ran-when-empty branch.
	body, end, err := p.parseNodes(map[string]bool{"else": true, "empty": true, "endfor": true})
	if err != nil {
		return nil, err
	}
	n := &ForNode{Target: parts[0], Iter: iter, Body: body, Pos: tagPos}
	if end.name == "else" || end.name == "empty" {
		n.Else, end, err = p.parseNodes(map[string]bool{"endfor": true})
		if err != nil {
			return nil, err
		}
	}
	if end.name != "endfor" {
		return nil, syntaxErrf(tagPos, "missing {%% endfor %%} for for tag")
	}
	return n, nil
}

func (p *parser) parseBlock(args string, tagPos Position) (Node, error) {
	parts, err := splitTagArgs(args)
	if err != nil {
		return nil, &LexError{Pos: tagPos, Msg: err.Error()}
	}
	if len(parts) != 1 {
		return nil, syntaxErrf(tagPos, "block tag expects exactly one name, got %q", args)
	}
	name := parts[0]
	body, end, err := p.parseNodes(map[string]bool{"endblock": true})
	if err != nil {
		return nil, err
	}
	if end.name != "endblock" {
		return nil, syntaxErrf(tagPos, "missing {%% endblock %%} for block %q", name)
	}
	if err := p.st.addBlock(name, body, tagPos); err != nil {
		return nil, err
	}
	return &BlockRefNode{Name: name, Pos: tagPos}, nil
}

func (p *parser) parseExtends(args string, tagPos Position, nested bool) error {
	if nested {
		return syntaxErrf(tagPos, "extends is only valid at the top level of a template")
	}
	if p.st.baseRef != "" {
		return syntaxErrf(tagPos, "multiple extends tags in one template")
	}
	parts, err := splitTagArgs(args)
	if err != nil {
		return &LexError{Pos: tagPos, Msg: err.Error()}
	}
	if len(parts) != 1 {
		return syntaxErrf(tagPos, "extends tag expects exactly one parent reference, got %q", args)
	}
	p.st.baseRef = parts[0]
	return nil
}

// splitNameArgs separates a tag's leading name from its argument string.
func splitNameArgs(content string) (name, args string) {
	s := strings.TrimSpace(content)
	if s == "" {
		return "", ""
	}
	i := 0
	for i < len(s) && !isSpaceByte(s[i]) {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

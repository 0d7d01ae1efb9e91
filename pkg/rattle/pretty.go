package rattle

import (
	"bytes"
	"fmt"
)

// Visitor observes document AST nodes during a Walk.
type Visitor interface {
	Visit(n Node) error
}

// Walk visits n and every node beneath it in source order.
func Walk(v Visitor, n Node) error {
	if err := v.Visit(n); err != nil {
		return err
	}
	switch t := n.(type) {
	case *IfNode:
		for _, c := range t.Then {
			if err := Walk(v, c); err != nil {
				return err
			}
		}
		for _, c := range t.Else {
			if err := Walk(v, c); err != nil {
				return err
			}
		}
	case *ForNode:
		for _, c := range t.Body {
			if err := Walk(v, c); err != nil {
				return err
			}
		}
		for _, c := range t.Else {
			if err := Walk(v, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pretty returns a line-oriented dump of a parsed document, blocks
// included. The CLI exposes it for diagnosing template structure.
func Pretty(doc *Document) string {
	var buf bytes.Buffer
	if doc.Extends != "" {
		fmt.Fprintf(&buf, "Extends(%q)\n", doc.Extends)
	}
	buf.WriteString("Document\n")
	for _, n := range doc.Nodes {
		ppNode(&buf, 2, n)
	}
	for _, name := range doc.BlockOrder {
		fmt.Fprintf(&buf, "Block(%s)\n", name)
		for _, n := range doc.Blocks[name] {
			ppNode(&buf, 2, n)
		}
	}
	return buf.String()
}

func ppNode(buf *bytes.Buffer, indent int, n Node) {
	ind := func() {
		for i := 0; i < indent; i++ {
			buf.WriteByte(' ')
		}
	}
	switch t := n.(type) {
	case *TextNode:
		ind()
		fmt.Fprintf(buf, "Text(%q)\n", t.Text)
	case *EmitNode:
		ind()
		fmt.Fprintf(buf, "Emit(%s)\n", t.Expr.String())
	case *IfNode:
		ind()
		fmt.Fprintf(buf, "If(%s)\n", t.Cond.String())
		for _, c := range t.Then {
			ppNode(buf, indent+2, c)
		}
		if len(t.Else) > 0 {
			ind()
			buf.WriteString("Else\n")
			for _, c := range t.Else {
				ppNode(buf, indent+2, c)
			}
		}
	case *ForNode:
		ind()
		fmt.Fprintf(buf, "For(%s in %s)\n", t.Target, t.Iter.String())
		for _, c := range t.Body {
			ppNode(buf, indent+2, c)
		}
		if len(t.Else) > 0 {
			ind()
			buf.WriteString("Empty\n")
			for _, c := range t.Else {
				ppNode(buf, indent+2, c)
			}
		}
	case *BlockRefNode:
		ind()
		fmt.Fprintf(buf, "BlockRef(%s)\n", t.Name)
	case *CommentNode:
		ind()
		buf.WriteString("Comment\n")
	}
}

package rattle

import "fmt"

// MaxExtendsDepth bounds the length of an extends chain. Chains past this
// depth, including cyclic ones, fail with ErrExtendsTooDeep.
const MaxExtendsDepth = 16

// resolved is a fully flattened template: the root body (the topmost
// parent's, when inheritance is involved) plus the merged block map.
type resolved struct {
	root   []Node
	blocks map[string][]Node
	order  []string
}

// resolve applies extends. The parent is loaded through the environment's
// Loader, parsed one level deeper, and resolved recursively; the child's
// block definitions then override same-named parent blocks. The child's
// top-level non-block content is discarded: only block overrides propagate
// upward.
func (e *Environment) resolve(doc *Document, level int) (*resolved, error) {
	if doc.Extends == "" {
		return &resolved{root: doc.Nodes, blocks: doc.Blocks, order: doc.BlockOrder}, nil
	}
	if level+1 > MaxExtendsDepth {
		return nil, fmt.Errorf("resolving extends %q: %w", doc.Extends, ErrExtendsTooDeep)
	}
	if e.Loader == nil {
		return nil, fmt.Errorf("extends %q requires a loader", doc.Extends)
	}
	src, err := e.Loader.Load(doc.Extends)
	if err != nil {
		return nil, fmt.Errorf("loading parent template %q: %w", doc.Extends, err)
	}
	parent, err := parseLevel(src, level+1)
	if err != nil {
		return nil, fmt.Errorf("parsing parent template %q: %w", doc.Extends, err)
	}
	base, err := e.resolve(parent, level+1)
	if err != nil {
		return nil, err
	}
	blocks := make(map[string][]Node, len(base.blocks)+len(doc.Blocks))
	for k, v := range base.blocks {
		blocks[k] = v
	}
	order := append([]string(nil), base.order...)
	for _, name := range doc.BlockOrder {
		if _, ok := blocks[name]; !ok {
			order = append(order, name)
		}
		blocks[name] = doc.Blocks[name]
	}
	return &resolved{root: base.root, blocks: blocks, order: order}, nil
}

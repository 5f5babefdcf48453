// Package walker provides the generic tree traversal shared by every
// language extractor. Extractors register a handler per node kind; the
// walker owns the visit order.
package walker

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Handler receives a node whose kind was registered. Its return value is
// ignored by the walker: descent is unconditional, and extractors avoid
// double-deriving symbols by choosing which kinds they register rather
// than by pruning subtrees.
type Handler func(node *sitter.Node)

// HandlerMap maps a tree-sitter node kind name to its handler.
type HandlerMap map[string]Handler

// Walk performs a depth-first pre-order traversal from node, invoking the
// registered handler for every node whose kind appears in handlers.
// Siblings are visited left to right, so symbol emission is deterministic
// source order within a file. Each node is visited exactly once; trees are
// finite with finite fan-out, so traversal always terminates.
func Walk(node *sitter.Node, handlers HandlerMap) {
	if node == nil {
		return
	}
	if h, ok := handlers[node.Type()]; ok {
		h(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), handlers)
	}
}

// NearestAncestor walks up the parent chain from node (exclusive) and
// returns the first ancestor whose kind appears in kinds, or nil when the
// root is reached first. Absence is a normal outcome, not an error.
func NearestAncestor(node *sitter.Node, kinds map[string]bool) *sitter.Node {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if kinds[p.Type()] {
			return p
		}
	}
	return nil
}

// HasAncestor reports whether any ancestor of node has one of the given
// kinds.
func HasAncestor(node *sitter.Node, kinds map[string]bool) bool {
	return NearestAncestor(node, kinds) != nil
}

// Package syntax is the narrow view of a parsed syntax tree that path
// building needs. It keeps the builder independent of the parser engine.
package syntax

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node is one node of a parsed syntax tree. Rows are 0-based.
type Node interface {
	Kind() string
	StartRow() uint
	EndRow() uint
	ChildCount() int
	Child(i int) Node
	// ChildByFieldName returns nil when the node has no child for field.
	ChildByFieldName(field string) Node
	Text() string
}

type tsNode struct {
	n      *tree_sitter.Node
	source []byte
}

// Wrap adapts a tree-sitter node. A nil node yields a nil Node.
func Wrap(n *tree_sitter.Node, source []byte) Node {
	if n == nil {
		return nil
	}
	return tsNode{n: n, source: source}
}

func (t tsNode) Kind() string { return t.n.Kind() }
func (t tsNode) StartRow() uint { return t.n.StartPosition().Row }
func (t tsNode) EndRow() uint { return t.n.EndPosition().Row }
func (t tsNode) ChildCount() int {
	return int(t.n.ChildCount())
}

func (t tsNode) Child(i int) Node {
	if i < 0 {
		return nil
	}
	return Wrap(t.n.Child(uint(i)), t.source)
}

func (t tsNode) ChildByFieldName(field string) Node {
	return Wrap(t.n.ChildByFieldName(field), t.source)
}

func (t tsNode) Text() string {
	start, end := t.n.StartByte(), t.n.EndByte()
	if end > uint(len(t.source)) || start > end {
		return ""
	}
	return string(t.source[start:end])
}

// FirstChildOfKind returns the first direct child whose kind is one of kinds.
func FirstChildOfKind(n Node, kinds ...string) Node {
	if n == nil {
		return nil
	}
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		for _, k := range kinds {
			if c.Kind() == k {
				return c
			}
		}
	}
	return nil
}

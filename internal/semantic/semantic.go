// Package semantic assigns every named declaration in a syntax tree a stable,
// dot-delimited path such as "Parser.parse" or "helper[2]".
//
// Paths are built in two passes. The first pass counts, per scope, how many
// path-bearing declarations share each name. The second pass emits the bare
// name when a name is unique in its scope and name[k] (k 1-based, source
// order) for every occurrence otherwise. A scope is the nearest enclosing
// named path-bearing declaration, or the top level of the file.
package semantic

import (
	"strconv"

	"github.com/DeusData/syl/internal/lang"
	"github.com/DeusData/syl/internal/syntax"
)

// Separator joins path segments.
const Separator = "."

// Node is a named declaration. Lines are 1-based and inclusive.
type Node struct {
	Path      string  `json:"path"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	StartLine int     `json:"startLine"`
	EndLine   int     `json:"endLine"`
	Children  []*Node `json:"children"`
}

// Result is the output of one build. It is never mutated after Build returns.
type Result struct {
	// PathMap holds every node by path.
	PathMap map[string]*Node `json:"pathMap"`
	// Roots are the declarations without a path-bearing ancestor, in source order.
	Roots []*Node `json:"roots"`
	// LineToPaths lists, per line, the paths covering it from outermost to innermost.
	LineToPaths map[int][]string `json:"lineToPath"`
}

type builder struct {
	cfg *lang.PathConfig
	// counts[scope][name] is the number of same-named declarations in scope.
	counts map[int]map[string]int
	// names holds the extracted name of every path-bearing node in walk
	// order, "" when the node has none. Pass two consumes it with cursor.
	names  []string
	cursor int
	// scopes numbers named declarations in walk order; scope 0 is the file.
	scopes int
	res    *Result
}

// Build computes the semantic paths of the tree rooted at root.
// A nil root yields an empty result.
func Build(root syntax.Node, cfg *lang.PathConfig) *Result {
	b := &builder{
		cfg:    cfg,
		counts: map[int]map[string]int{},
		res: &Result{
			PathMap:     map[string]*Node{},
			Roots:       []*Node{},
			LineToPaths: map[int][]string{},
		},
	}
	if root == nil {
		return b.res
	}

	b.count(root, 0)
	b.scopes = 0
	b.build(root, 0, nil, map[string]int{})
	return b.res
}

func (b *builder) count(n syntax.Node, scope int) {
	if b.cfg.IsPathNode(n.Kind()) {
		name, ok := b.cfg.NodeName(n)
		if !ok {
			b.names = append(b.names, "")
		} else {
			b.names = append(b.names, name)
			if b.counts[scope] == nil {
				b.counts[scope] = map[string]int{}
			}
			b.counts[scope][name]++
			b.scopes++
			scope = b.scopes
		}
	}
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			b.count(c, scope)
		}
	}
}

func (b *builder) build(n syntax.Node, scope int, parent *Node, seen map[string]int) {
	if b.cfg.IsPathNode(n.Kind()) {
		name := b.names[b.cursor]
		b.cursor++
		if name != "" {
			b.scopes++
			node := b.emit(n, name, scope, parent, seen)
			scope, parent, seen = b.scopes, node, map[string]int{}
		}
	}
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			b.build(c, scope, parent, seen)
		}
	}
}

func (b *builder) emit(n syntax.Node, name string, scope int, parent *Node, seen map[string]int) *Node {
	seen[name]++
	segment := name
	if b.counts[scope][name] > 1 {
		segment = name + "[" + strconv.Itoa(seen[name]) + "]"
	}

	path := segment
	if parent != nil {
		path = parent.Path + Separator + segment
	}

	node := &Node{
		Path:      path,
		Name:      name,
		Kind:      n.Kind(),
		StartLine: int(n.StartRow()) + 1,
		EndLine:   int(n.EndRow()) + 1,
		Children:  []*Node{},
	}
	if parent != nil {
		parent.Children = append(parent.Children, node)
	} else {
		b.res.Roots = append(b.res.Roots, node)
	}
	b.res.PathMap[path] = node

	// Ancestors were emitted first, so each line lists outer paths before inner ones.
	for line := node.StartLine; line <= node.EndLine; line++ {
		b.res.LineToPaths[line] = append(b.res.LineToPaths[line], path)
	}
	return node
}

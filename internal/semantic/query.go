package semantic

import (
	"fmt"
	"sort"
	"strings"
)

// Lookup returns the node at path.
func (r *Result) Lookup(path string) (*Node, bool) {
	n, ok := r.PathMap[path]
	return n, ok
}

// PathsAt returns the paths covering line, outermost first.
// The returned slice must not be modified.
func (r *Result) PathsAt(line int) []string {
	return r.LineToPaths[line]
}

// Innermost returns the most deeply nested path covering line.
func (r *Result) Innermost(line int) (string, bool) {
	paths := r.LineToPaths[line]
	if len(paths) == 0 {
		return "", false
	}
	return paths[len(paths)-1], true
}

// Paths returns every path in ascending order.
func (r *Result) Paths() []string {
	out := make([]string, 0, len(r.PathMap))
	for p := range r.PathMap {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Format renders the node tree, one "- path (kind, Lstart-end)" line per node,
// indented two spaces per level.
func (r *Result) Format() string {
	if len(r.Roots) == 0 {
		return "No semantic nodes found in this file.\n"
	}
	var sb strings.Builder
	for _, n := range r.Roots {
		formatNode(&sb, n, 0)
	}
	return sb.String()
}

func formatNode(sb *strings.Builder, n *Node, depth int) {
	fmt.Fprintf(sb, "%s- %s (%s, L%d-%d)\n", strings.Repeat("  ", depth), n.Path, n.Kind, n.StartLine, n.EndLine)
	for _, c := range n.Children {
		formatNode(sb, c, depth+1)
	}
}

// Source returns the lines of content spanned by n.
func Source(n *Node, content string) string {
	lines := strings.Split(content, "\n")
	start, end := n.StartLine-1, n.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

package annotation

import (
	"github.com/DeusData/syl/internal/semantic"
)

// Resolved pairs a stored annotation with the node its path currently names.
// Node is nil, and Orphaned true, when the path no longer exists.
type Resolved struct {
	Annotation Annotation     `json:"annotation"`
	Path       string         `json:"path"`
	Node       *semantic.Node `json:"node"`
	Orphaned   bool           `json:"orphaned"`
}

// Resolve joins every annotation in f against res. Paths are visited in
// ascending order and annotations in stored order. Unknown or malformed
// paths resolve as orphaned; a nil f yields no entries.
func Resolve(f *File, res *semantic.Result) []Resolved {
	out := []Resolved{}
	if f == nil {
		return out
	}
	for _, path := range f.Paths() {
		var node *semantic.Node
		if res != nil {
			node = res.PathMap[path]
		}
		for _, a := range f.Annotations[path] {
			out = append(out, Resolved{
				Annotation: a,
				Path:       path,
				Node:       node,
				Orphaned:   node == nil,
			})
		}
	}
	return out
}

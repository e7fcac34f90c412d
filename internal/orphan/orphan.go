// Package orphan reports annotations whose semantic path no longer exists.
package orphan

import "github.com/DeusData/syl/internal/annotation"

// Report is the orphaned subset of a resolved annotation list.
type Report struct {
	Orphans     []annotation.Resolved `json:"orphans"`
	Total       int                   `json:"total"`
	OrphanCount int                   `json:"orphanCount"`
}

// Detect keeps the orphaned entries of resolved in their original order.
func Detect(resolved []annotation.Resolved) Report {
	orphans := []annotation.Resolved{}
	for _, r := range resolved {
		if r.Orphaned {
			orphans = append(orphans, r)
		}
	}
	return Report{
		Orphans:     orphans,
		Total:       len(resolved),
		OrphanCount: len(orphans),
	}
}

// Group is every orphaned annotation stored under one path.
type Group struct {
	Path        string                  `json:"path"`
	Annotations []annotation.Annotation `json:"annotations"`
}

// GroupByPath folds the orphans of r by path, in order of first appearance.
func GroupByPath(r Report) []Group {
	groups := []Group{}
	index := map[string]int{}
	for _, o := range r.Orphans {
		i, ok := index[o.Path]
		if !ok {
			i = len(groups)
			index[o.Path] = i
			groups = append(groups, Group{Path: o.Path})
		}
		groups[i].Annotations = append(groups[i].Annotations, o.Annotation)
	}
	return groups
}

// Package annotation holds path-keyed notes, resolves them against a freshly
// built path map and persists them.
package annotation

import (
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Version is the schema version written to annotation files.
const Version = 1

// ErrNotFound is returned when an update or lookup targets a missing annotation.
var ErrNotFound = errors.New("annotation not found")

// Annotation is one note attached to a semantic path.
type Annotation struct {
	ID      string    `json:"id"`
	Body    string    `json:"body"`
	Author  string    `json:"author"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// File is every annotation of one source file, keyed by semantic path.
// A path with no annotations has no key.
type File struct {
	Version     int                     `json:"version"`
	SourceFile  string                  `json:"sourceFile"`
	Annotations map[string][]Annotation `json:"annotations"`
}

// NewFile returns an empty annotation file for sourceFile.
func NewFile(sourceFile string) *File {
	return &File{
		Version:     Version,
		SourceFile:  sourceFile,
		Annotations: map[string][]Annotation{},
	}
}

// Paths returns the annotated paths in ascending order.
func (f *File) Paths() []string {
	out := make([]string, 0, len(f.Annotations))
	for p := range f.Annotations {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of annotations across all paths.
func (f *File) Count() int {
	n := 0
	for _, list := range f.Annotations {
		n += len(list)
	}
	return n
}

// Add appends a new annotation under path.
func (f *File) Add(path, body, author string, now time.Time) Annotation {
	if f.Annotations == nil {
		f.Annotations = map[string][]Annotation{}
	}
	now = now.UTC()
	a := Annotation{
		ID:      uuid.NewString(),
		Body:    body,
		Author:  author,
		Created: now,
		Updated: now,
	}
	f.Annotations[path] = append(f.Annotations[path], a)
	return a
}

// Update replaces the body of annotation id under path. Updated never moves
// backwards, even if the clock does.
func (f *File) Update(path, id, body string, now time.Time) (Annotation, error) {
	list := f.Annotations[path]
	i := slices.IndexFunc(list, func(a Annotation) bool { return a.ID == id })
	if i < 0 {
		return Annotation{}, ErrNotFound
	}
	a := &list[i]
	a.Body = body
	if now = now.UTC(); now.After(a.Updated) {
		a.Updated = now
	}
	return *a, nil
}

// Remove deletes annotation id under path and drops the path key once its
// list is empty. It reports whether anything was removed.
func (f *File) Remove(path, id string) bool {
	list := f.Annotations[path]
	i := slices.IndexFunc(list, func(a Annotation) bool { return a.ID == id })
	if i < 0 {
		return false
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(f.Annotations, path)
	} else {
		f.Annotations[path] = list
	}
	return true
}

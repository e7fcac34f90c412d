package annotation

import (
	"testing"
	"time"

	"github.com/DeusData/syl/internal/semantic"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFileAddKeepsInsertionOrder(t *testing.T) {
	f := NewFile("src/a.py")
	first := f.Add("Foo", "one", "ana", t0)
	second := f.Add("Foo", "two", "ben", t0.Add(time.Second))

	list := f.Annotations["Foo"]
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
	if first.ID == second.ID || first.ID == "" {
		t.Errorf("ids must be unique and non-empty: %q %q", first.ID, second.ID)
	}
	if !first.Created.Equal(first.Updated) {
		t.Errorf("new annotation should have created == updated")
	}
}

func TestFileUpdate(t *testing.T) {
	f := NewFile("a.py")
	a := f.Add("Foo", "old", "ana", t0)

	got, err := f.Update("Foo", a.ID, "new", t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Body != "new" || !got.Updated.Equal(t0.Add(time.Minute)) || !got.Created.Equal(t0) {
		t.Errorf("Update returned %+v", got)
	}
	if f.Annotations["Foo"][0].Body != "new" {
		t.Error("update was not applied in place")
	}

	// A clock that went backwards must not move updated before created.
	got, err = f.Update("Foo", a.ID, "newer", t0.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Updated.Before(got.Created) {
		t.Errorf("updated %v is before created %v", got.Updated, got.Created)
	}

	if _, err := f.Update("Foo", "missing", "x", t0); err != ErrNotFound {
		t.Errorf("Update(missing id) err = %v, want ErrNotFound", err)
	}
	if _, err := f.Update("Bar", a.ID, "x", t0); err != ErrNotFound {
		t.Errorf("Update(wrong path) err = %v, want ErrNotFound", err)
	}
}

func TestFileRemovePrunesEmptyPaths(t *testing.T) {
	f := NewFile("a.py")
	a := f.Add("Foo", "one", "ana", t0)
	b := f.Add("Foo", "two", "ana", t0)

	if !f.Remove("Foo", a.ID) {
		t.Fatal("Remove returned false for existing annotation")
	}
	if len(f.Annotations["Foo"]) != 1 || f.Annotations["Foo"][0].ID != b.ID {
		t.Fatalf("unexpected list after remove: %+v", f.Annotations["Foo"])
	}
	if !f.Remove("Foo", b.ID) {
		t.Fatal("Remove returned false for last annotation")
	}
	if _, ok := f.Annotations["Foo"]; ok {
		t.Error("empty path key must be deleted")
	}
	if f.Remove("Foo", b.ID) {
		t.Error("second Remove should report false")
	}
}

func resultWith(paths ...string) *semantic.Result {
	res := &semantic.Result{PathMap: map[string]*semantic.Node{}, Roots: []*semantic.Node{}, LineToPaths: map[int][]string{}}
	for i, p := range paths {
		n := &semantic.Node{Path: p, Name: p, Kind: "function_definition", StartLine: i + 1, EndLine: i + 1}
		res.PathMap[p] = n
		res.Roots = append(res.Roots, n)
	}
	return res
}

func TestResolveMarksMissingPathsOrphaned(t *testing.T) {
	f := NewFile("foo.py")
	f.Add("Foo.bar", "gone", "ana", t0)
	f.Add("Foo", "kept", "ana", t0)

	resolved := Resolve(f, resultWith("Foo"))
	if len(resolved) != 2 {
		t.Fatalf("got %d resolved entries, want 2", len(resolved))
	}
	// Paths are visited in ascending order.
	if resolved[0].Path != "Foo" || resolved[0].Orphaned || resolved[0].Node == nil {
		t.Errorf("Foo should resolve: %+v", resolved[0])
	}
	if resolved[1].Path != "Foo.bar" || !resolved[1].Orphaned || resolved[1].Node != nil {
		t.Errorf("Foo.bar should be orphaned: %+v", resolved[1])
	}
}

func TestResolveTotality(t *testing.T) {
	f := NewFile("x.py")
	f.Add("a", "1", "u", t0)
	f.Add("a", "2", "u", t0)
	f.Add("b[2]", "3", "u", t0)
	f.Add("not a path at all!", "4", "u", t0)

	for name, res := range map[string]*semantic.Result{
		"empty result": resultWith(),
		"nil result":   nil,
		"partial":      resultWith("a"),
	} {
		got := Resolve(f, res)
		if len(got) != f.Count() {
			t.Errorf("%s: got %d entries, want %d", name, len(got), f.Count())
		}
	}

	for _, r := range Resolve(f, resultWith()) {
		if !r.Orphaned {
			t.Errorf("%q should be orphaned against an empty result", r.Path)
		}
	}

	got := Resolve(f, resultWith("a"))
	if got[0].Annotation.Body != "1" || got[1].Annotation.Body != "2" {
		t.Errorf("stored order not preserved: %q, %q", got[0].Annotation.Body, got[1].Annotation.Body)
	}
}

func TestResolveEmptyInputs(t *testing.T) {
	if got := Resolve(nil, resultWith("a")); got == nil || len(got) != 0 {
		t.Errorf("Resolve(nil) = %v, want empty slice", got)
	}
	if got := Resolve(&File{}, resultWith("a")); len(got) != 0 {
		t.Errorf("Resolve(zero file) = %v, want empty", got)
	}
}

package semantic

import (
	"reflect"
	"strings"
	"testing"

	"github.com/DeusData/syl/internal/lang"
	"github.com/DeusData/syl/internal/syntax"
)

// stub is a hand-built syntax node. Rows are 0-based like tree-sitter's.
type stub struct {
	kind     string
	name     string
	start    uint
	end      uint
	children []*stub
}

func (s *stub) Kind() string { return s.kind }
func (s *stub) StartRow() uint { return s.start }
func (s *stub) EndRow() uint { return s.end }
func (s *stub) ChildCount() int { return len(s.children) }
func (s *stub) Text() string { return s.name }
func (s *stub) Child(i int) syntax.Node {
	return s.children[i]
}

func (s *stub) ChildByFieldName(field string) syntax.Node {
	if field != "name" || s.name == "" {
		return nil
	}
	return &stub{kind: "identifier", name: s.name, start: s.start, end: s.start}
}

func fn(name string, start, end uint, children ...*stub) *stub {
	return &stub{kind: "function", name: name, start: start, end: end, children: children}
}

func class(name string, start, end uint, children ...*stub) *stub {
	return &stub{kind: "class", name: name, start: start, end: end, children: children}
}

func block(start, end uint, children ...*stub) *stub {
	return &stub{kind: "block", start: start, end: end, children: children}
}

func file(children ...*stub) *stub {
	var end uint
	for _, c := range children {
		end = max(end, c.end)
	}
	return &stub{kind: "module", start: 0, end: end, children: children}
}

var stubConfig = &lang.PathConfig{
	Language:      "stub",
	PathNodeTypes: []string{"function", "class"},
}

func paths(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Path)
	}
	return out
}

func TestDuplicateTopLevelNames(t *testing.T) {
	res := Build(file(
		fn("helper", 0, 1),
		fn("helper", 3, 4),
		fn("main", 6, 7),
	), stubConfig)

	want := []string{"helper[1]", "helper[2]", "main"}
	if got := paths(res.Roots); !reflect.DeepEqual(got, want) {
		t.Fatalf("roots = %v, want %v", got, want)
	}
	if _, ok := res.Lookup("helper"); ok {
		t.Error("bare name must not exist once a duplicate is present")
	}
}

func TestFirstOccurrenceIndexedBeforeDuplicateSeen(t *testing.T) {
	// The duplicate appears after a nested scope; the first must still be indexed.
	res := Build(file(
		class("A", 0, 10, fn("run", 1, 2)),
		fn("run", 11, 12),
		fn("run", 13, 14),
	), stubConfig)

	for _, p := range []string{"A", "A.run", "run[1]", "run[2]"} {
		if _, ok := res.Lookup(p); !ok {
			t.Errorf("missing path %q; have %v", p, res.Paths())
		}
	}
}

func TestSameNameDifferentScopesStaysBare(t *testing.T) {
	res := Build(file(
		class("Foo", 0, 5, fn("run", 1, 2)),
		class("Bar", 6, 10, fn("run", 7, 8)),
	), stubConfig)

	for _, p := range []string{"Foo.run", "Bar.run"} {
		if _, ok := res.Lookup(p); !ok {
			t.Errorf("missing path %q; have %v", p, res.Paths())
		}
	}
}

func TestNestedDuplicates(t *testing.T) {
	res := Build(file(
		class("Foo", 0, 20,
			fn("bar", 1, 3),
			fn("bar", 4, 6, fn("inner", 5, 5)),
			fn("baz", 7, 8),
		),
	), stubConfig)

	want := []string{"Foo", "Foo.bar[1]", "Foo.bar[2]", "Foo.bar[2].inner", "Foo.baz"}
	if got := res.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
	foo := res.PathMap["Foo"]
	if got := paths(foo.Children); !reflect.DeepEqual(got, []string{"Foo.bar[1]", "Foo.bar[2]", "Foo.baz"}) {
		t.Errorf("Foo children = %v", got)
	}
}

func TestLineIndexOuterToInner(t *testing.T) {
	// class Foo on lines 3-12, method bar on lines 5-9
	res := Build(file(class("Foo", 2, 11, fn("bar", 4, 8))), stubConfig)

	if got := res.PathsAt(7); !reflect.DeepEqual(got, []string{"Foo", "Foo.bar"}) {
		t.Errorf("line 7 = %v, want [Foo Foo.bar]", got)
	}
	if got := res.PathsAt(10); !reflect.DeepEqual(got, []string{"Foo"}) {
		t.Errorf("line 10 = %v, want [Foo]", got)
	}
	if got := res.PathsAt(2); len(got) != 0 {
		t.Errorf("line 2 = %v, want none", got)
	}
	if inner, ok := res.Innermost(6); !ok || inner != "Foo.bar" {
		t.Errorf("Innermost(6) = %q, %v", inner, ok)
	}
	if _, ok := res.Innermost(1); ok {
		t.Error("Innermost(1) should be absent")
	}
}

func TestNonPathNodesAreTransparent(t *testing.T) {
	res := Build(file(
		class("Foo", 0, 10,
			block(1, 9,
				block(2, 8, fn("deep", 3, 4)),
				fn("deep", 5, 6),
			),
		),
	), stubConfig)

	want := []string{"Foo", "Foo.deep[1]", "Foo.deep[2]"}
	if got := res.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestNamelessPathNodeIsTransparent(t *testing.T) {
	// An anonymous class neither creates a segment nor opens a scope: its
	// inner function is a sibling of the top-level one.
	res := Build(file(
		class("", 0, 5, fn("cb", 1, 2)),
		fn("cb", 6, 7),
	), stubConfig)

	want := []string{"cb[1]", "cb[2]"}
	if got := paths(res.Roots); !reflect.DeepEqual(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
	if len(res.PathMap) != 2 {
		t.Errorf("PathMap has %d entries, want 2", len(res.PathMap))
	}
}

func TestEmptyTree(t *testing.T) {
	for name, root := range map[string]syntax.Node{
		"empty module": file(),
		"nil root":     nil,
		"only blocks":  file(block(0, 3, block(1, 2))),
	} {
		res := Build(root, stubConfig)
		if len(res.Roots) != 0 || len(res.PathMap) != 0 || len(res.LineToPaths) != 0 {
			t.Errorf("%s: got %d roots, %d paths, %d lines; want none", name, len(res.Roots), len(res.PathMap), len(res.LineToPaths))
		}
		if res.Roots == nil {
			t.Errorf("%s: Roots should be an empty slice, not nil", name)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	tree := file(
		fn("a", 0, 1),
		class("C", 2, 9, fn("m", 3, 4), fn("m", 5, 6), block(7, 8, fn("a", 7, 8))),
		fn("a", 10, 11),
	)
	first := Build(tree, stubConfig)
	for i := 0; i < 5; i++ {
		if again := Build(tree, stubConfig); !reflect.DeepEqual(first, again) {
			t.Fatalf("build %d differs from first build", i+2)
		}
	}
}

func TestInvariants(t *testing.T) {
	tree := file(
		fn("x", 0, 2, fn("y", 1, 1), fn("y", 2, 2)),
		class("K", 3, 20,
			fn("x", 4, 8, block(5, 7, fn("z", 6, 6))),
			fn("x", 9, 12),
			class("", 13, 18, fn("w", 14, 15), fn("w", 16, 17)),
		),
		fn("x", 21, 22),
	)
	res := Build(tree, stubConfig)
	assertInvariants(t, res)
}

// assertInvariants checks uniqueness, the prefix rule and line coverage.
func assertInvariants(t *testing.T, res *Result) {
	t.Helper()

	count := 0
	var visit func(n *Node, parent *Node, ancestors []*Node)
	visit = func(n *Node, parent *Node, ancestors []*Node) {
		count++
		if got := res.PathMap[n.Path]; got != n {
			t.Errorf("PathMap[%q] does not point at the tree node", n.Path)
		}
		if parent != nil {
			if !strings.HasPrefix(n.Path, parent.Path+Separator) {
				t.Errorf("%q is not an extension of parent %q", n.Path, parent.Path)
			}
			if _, ok := res.PathMap[parent.Path]; !ok {
				t.Errorf("parent %q missing from PathMap", parent.Path)
			}
		}
		chain := append(append([]*Node{}, ancestors...), n)
		for line := n.StartLine; line <= n.EndLine; line++ {
			covered := res.PathsAt(line)
			for _, a := range chain {
				if a.StartLine <= line && line <= a.EndLine && !contains(covered, a.Path) {
					t.Errorf("line %d missing %q (has %v)", line, a.Path, covered)
				}
			}
		}
		for _, c := range n.Children {
			visit(c, n, chain)
		}
	}
	for _, r := range res.Roots {
		visit(r, nil, nil)
	}
	if count != len(res.PathMap) {
		t.Errorf("tree has %d nodes but PathMap has %d; paths are not unique", count, len(res.PathMap))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestFormat(t *testing.T) {
	res := Build(file(class("Foo", 2, 11, fn("bar", 4, 8))), stubConfig)
	want := "- Foo (class, L3-12)\n  - Foo.bar (function, L5-9)\n"
	if got := res.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
	if got := Build(file(), stubConfig).Format(); got != "No semantic nodes found in this file.\n" {
		t.Errorf("empty Format() = %q", got)
	}
}

func TestSource(t *testing.T) {
	content := "a\nb\nc\nd"
	if got := Source(&Node{StartLine: 2, EndLine: 3}, content); got != "b\nc" {
		t.Errorf("Source = %q, want b\\nc", got)
	}
	if got := Source(&Node{StartLine: 3, EndLine: 99}, content); got != "c\nd" {
		t.Errorf("Source past end = %q", got)
	}
	if got := Source(&Node{StartLine: 9, EndLine: 10}, content); got != "" {
		t.Errorf("Source out of range = %q", got)
	}
}

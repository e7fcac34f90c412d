package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/DeusData/syl/internal/lang"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func names(entries []*Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestTreeOrderingAndIgnores(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"zeta.py",
		"alpha.ts",
		"src/main.go",
		"src/lib/util.py",
		"node_modules/pkg/index.js",
		".git/HEAD",
		".syl/foo.py.json",
		".env",
		"dist/bundle.js",
		"__pycache__/x.pyc",
	)

	tree, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if got, want := names(tree), []string{"src", "alpha.ts", "zeta.py"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("top level = %v, want %v", got, want)
	}
	src := tree[0]
	if src.Type != TypeDirectory || src.Path != "src" {
		t.Errorf("src entry = %+v", src)
	}
	if got, want := names(src.Children), []string{"lib", "main.go"}; !reflect.DeepEqual(got, want) {
		t.Errorf("src children = %v, want %v", got, want)
	}
	if p := src.Children[0].Children[0].Path; p != "src/lib/util.py" {
		t.Errorf("nested path = %q", p)
	}
}

func TestTreeHonoursIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "keep.py", "gen/out.py", "notes.tmp")
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte("# generated\ngen\n*.tmp\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tree, err := Tree(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if got := names(tree); !reflect.DeepEqual(got, []string{"keep.py"}) {
		t.Errorf("tree = %v, want [keep.py]", got)
	}

	tree, _ = Tree(context.Background(), dir, &Options{Ignore: []string{"keep.py"}})
	if len(tree) != 0 {
		t.Errorf("configured ignore not applied: %v", names(tree))
	}
}

func TestFilesByLanguage(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.go", "app.py", "README.md", "web/App.tsx", "node_modules/x/y.js")

	files, err := Files(context.Background(), dir, lang.NewDefaultRegistry(), nil)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
		if f.Path == "" || f.Language == "" {
			t.Errorf("incomplete file info: %+v", f)
		}
	}
	if want := []string{"app.py", "main.go", "web/App.tsx"}; !reflect.DeepEqual(rels, want) {
		t.Errorf("files = %v, want %v", rels, want)
	}
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "main.go")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Files(ctx, dir, lang.NewDefaultRegistry(), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Files: expected context.Canceled, got %v", err)
	}
	if _, err := Tree(ctx, dir, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Tree: expected context.Canceled, got %v", err)
	}
}

package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/config"
	"github.com/DeusData/syl/internal/lang"
	"github.com/DeusData/syl/internal/workspace"
)

// recorder collects the files passed to the change callback.
type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) onChange(_ context.Context, files []string) error {
	r.calls = append(r.calls, files)
	return r.err
}

func newProject(t *testing.T) (*workspace.Project, string) {
	t.Helper()
	root := t.TempDir()
	write(t, root, "app.py", "def main():\n    pass\n")
	write(t, root, "util.py", "def helper():\n    pass\n")

	store := annotation.NewFileStore(filepath.Join(root, annotation.DirName))
	p, err := workspace.New(root, lang.NewDefaultRegistry(), store, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add(context.Background(), "app.py", "main", "entry point", "me"); err != nil {
		t.Fatal(err)
	}
	return p, root
}

func write(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	later := time.Now().Add(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		base     time.Duration
		files    int
		expected time.Duration
	}{
		{time.Second, 0, 1 * time.Second},
		{time.Second, 499, 1 * time.Second},
		{time.Second, 500, 2 * time.Second},
		{2 * time.Second, 2000, 6 * time.Second},
		{time.Second, 10000, 21 * time.Second},
		{time.Second, 50000, 60 * time.Second},
		{90 * time.Second, 0, 60 * time.Second},
	}
	for _, tt := range tests {
		if got := pollInterval(tt.base, tt.files); got != tt.expected {
			t.Errorf("pollInterval(%v, %d) = %v, want %v", tt.base, tt.files, got, tt.expected)
		}
	}
}

func TestChangedFiles(t *testing.T) {
	now := time.Now()
	prev := map[string]fileSnapshot{
		"a.py": {exists: true, modTime: now, size: 10, hash: 1},
		"b.py": {exists: true, modTime: now, size: 10, hash: 2},
		"c.py": {exists: true, modTime: now, size: 10, hash: 3},
		"d.py": {exists: true, modTime: now, size: 10, hash: 4},
	}
	cur := map[string]fileSnapshot{
		"a.py": {exists: true, modTime: now, size: 10, hash: 1},
		"b.py": {exists: true, modTime: now.Add(time.Second), size: 10, hash: 2},
		"c.py": {exists: true, modTime: now, size: 11, hash: 30},
		"d.py": {},
		"e.py": {exists: true, modTime: now, size: 5, hash: 5},
	}
	got := changedFiles(prev, cur)
	if want := []string{"c.py", "d.py"}; !reflect.DeepEqual(got, want) {
		t.Errorf("changedFiles = %v, want %v", got, want)
	}
}

func TestWatcherTriggersOnContentChange(t *testing.T) {
	p, root := newProject(t)
	rec := &recorder{}
	w := New(p, rec.onChange)
	ctx := context.Background()

	// First poll: baseline capture, no callback.
	w.poll(ctx)
	if len(rec.calls) != 0 {
		t.Fatalf("first poll should not trigger, got %v", rec.calls)
	}

	// mtime moves but content is the same: the hash suppresses the change.
	touch(t, filepath.Join(root, "app.py"))
	w.poll(ctx)
	if len(rec.calls) != 0 {
		t.Fatalf("touch without edit should not trigger, got %v", rec.calls)
	}

	write(t, root, "app.py", "def start():\n    pass\n")
	w.poll(ctx)
	if len(rec.calls) != 1 || !reflect.DeepEqual(rec.calls[0], []string{"app.py"}) {
		t.Fatalf("calls = %v, want [[app.py]]", rec.calls)
	}

	// Unannotated files are not watched.
	write(t, root, "util.py", "def other():\n    pass\n")
	w.poll(ctx)
	if len(rec.calls) != 1 {
		t.Errorf("unannotated edit triggered: %v", rec.calls)
	}
}

func TestWatcherReportsDeletedSource(t *testing.T) {
	p, root := newProject(t)
	rec := &recorder{}
	w := New(p, rec.onChange)

	w.poll(context.Background())
	if err := os.Remove(filepath.Join(root, "app.py")); err != nil {
		t.Fatal(err)
	}
	w.poll(context.Background())
	if len(rec.calls) != 1 || rec.calls[0][0] != "app.py" {
		t.Errorf("calls = %v, want [[app.py]]", rec.calls)
	}
}

func TestWatcherRetriesFailedCallback(t *testing.T) {
	p, root := newProject(t)
	rec := &recorder{err: errors.New("boom")}
	w := New(p, rec.onChange)

	w.poll(context.Background())
	write(t, root, "app.py", "def changed():\n    pass\n")
	w.poll(context.Background())
	w.poll(context.Background())
	if len(rec.calls) != 2 {
		t.Fatalf("failed callback should be retried, got %d calls", len(rec.calls))
	}

	rec.err = nil
	w.poll(context.Background())
	w.poll(context.Background())
	if len(rec.calls) != 3 {
		t.Errorf("change should be consumed after success, got %d calls", len(rec.calls))
	}
}

func TestWatcherNewlyAnnotatedFileIsBaseline(t *testing.T) {
	p, root := newProject(t)
	rec := &recorder{}
	w := New(p, rec.onChange)

	w.poll(context.Background())
	if _, err := p.Store().Add(context.Background(), "util.py", "helper", "note", "me"); err != nil {
		t.Fatal(err)
	}
	w.poll(context.Background())
	if len(rec.calls) != 0 {
		t.Fatalf("newly annotated file should not trigger, got %v", rec.calls)
	}

	write(t, root, "util.py", "def helper2():\n    pass\n")
	w.poll(context.Background())
	if len(rec.calls) != 1 || rec.calls[0][0] != "util.py" {
		t.Errorf("calls = %v, want [[util.py]]", rec.calls)
	}
}

func TestWatcherCancellation(t *testing.T) {
	p, _ := newProject(t)
	var calls atomic.Int32
	w := New(p, func(context.Context, []string) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

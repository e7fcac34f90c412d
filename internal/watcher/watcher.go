// Package watcher polls annotated source files and reports the ones whose
// content changed, so their annotations can be re-resolved.
package watcher

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/DeusData/syl/internal/workspace"
)

const (
	tickInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	exists  bool
	modTime time.Time
	size    int64
	hash    uint64
}

// ChangeFunc is called with the project-relative files whose content changed
// or that were deleted since the previous poll.
type ChangeFunc func(ctx context.Context, files []string) error

// Watcher polls the annotated files of one project.
type Watcher struct {
	project  *workspace.Project
	onChange ChangeFunc
	base     time.Duration

	snapshot map[string]fileSnapshot
	interval time.Duration
	nextPoll time.Time
}

// New creates a Watcher. onChange is called when annotated files change.
func New(p *workspace.Project, onChange ChangeFunc) *Watcher {
	return &Watcher{
		project:  p,
		onChange: onChange,
		base:     p.Config().EffectiveWatchInterval(),
	}
}

// Run blocks until ctx is cancelled, polling whenever the adaptive interval
// has elapsed.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(min(tickInterval, w.base))
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Now().Before(w.nextPoll) {
				continue
			}
			w.poll(ctx)
		}
	}
}

// poll captures a snapshot of the annotated files and compares it with the
// previous one. The first poll only records a baseline.
func (w *Watcher) poll(ctx context.Context) {
	files, err := w.project.Store().Files(ctx)
	if err != nil {
		slog.Warn("watcher.list_files", "err", err)
		w.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap := w.capture(files)
	w.interval = pollInterval(w.base, len(snap))
	w.nextPoll = time.Now().Add(w.interval)

	if w.snapshot == nil {
		slog.Debug("watcher.baseline", "files", len(snap))
		w.snapshot = snap
		return
	}

	changed := changedFiles(w.snapshot, snap)
	if len(changed) == 0 {
		w.snapshot = snap
		return
	}

	slog.Info("watcher.changed", "files", len(changed))
	if err := w.onChange(ctx, changed); err != nil {
		slog.Warn("watcher.on_change", "err", err)
		// Keep the old state of the changed files so they are retried.
		for _, f := range changed {
			snap[f] = w.snapshot[f]
		}
	}
	w.snapshot = snap
}

// capture stats every file and hashes the ones whose mtime or size differ
// from the previous snapshot.
func (w *Watcher) capture(files []string) map[string]fileSnapshot {
	snap := make(map[string]fileSnapshot, len(files))
	for _, rel := range files {
		abs, err := w.project.Abs(rel)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Debug("watcher.stat", "file", rel, "err", err)
				continue
			}
			snap[rel] = fileSnapshot{}
			continue
		}
		cur := fileSnapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
		prev, ok := w.snapshot[rel]
		if ok && prev.exists && prev.modTime.Equal(cur.modTime) && prev.size == cur.size {
			cur.hash = prev.hash
		} else if h, err := fileHash(abs); err == nil {
			cur.hash = h
		}
		snap[rel] = cur
	}
	return snap
}

// changedFiles lists files present in both snapshots whose content hash or
// existence differs. Files that just started or stopped being annotated are
// not changes.
func changedFiles(prev, cur map[string]fileSnapshot) []string {
	var changed []string
	for rel, c := range cur {
		p, ok := prev[rel]
		if !ok {
			continue
		}
		if p.exists != c.exists || p.hash != c.hash {
			changed = append(changed, rel)
		}
	}
	sort.Strings(changed)
	return changed
}

func fileHash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// pollInterval computes the adaptive interval from file count:
// base + 1s per 500 files, capped at 60s.
func pollInterval(base time.Duration, fileCount int) time.Duration {
	d := base + time.Duration(fileCount/500)*time.Second
	if d > maxInterval {
		d = maxInterval
	}
	return d
}

// Package discover lists the files of a project: a nested tree for browsing
// and a flat list of files with a registered language.
package discover

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DeusData/syl/internal/lang"
)

// IgnoreFileName is the optional per-project file of extra ignore globs.
const IgnoreFileName = ".sylignore"

// IGNORE_PATTERNS are entry names always left out of the tree. Dot-files are
// skipped as well.
var IGNORE_PATTERNS = map[string]bool{
	"node_modules": true, ".git": true, ".syl": true, "dist": true,
	".next": true, "__pycache__": true, ".DS_Store": true,
}

// Entry types.
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
)

// Entry is one node of the project tree. Path is relative to the root and
// uses forward slashes.
type Entry struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     string   `json:"type"`
	Children []*Entry `json:"children,omitempty"`
}

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // relative to project root
	Language lang.Language // detected language
}

// Options configures discovery.
type Options struct {
	IgnoreFile string   // path to an ignore file; defaults to <root>/.sylignore
	Ignore     []string // extra globs, matched against names and relative paths
}

type walker struct {
	ctx    context.Context
	root   string
	ignore []string
}

func newWalker(ctx context.Context, root string, opts *Options) (*walker, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ignPath := filepath.Join(root, IgnoreFileName)
	var extra []string
	if opts != nil {
		if opts.IgnoreFile != "" {
			ignPath = opts.IgnoreFile
		}
		extra = append(extra, opts.Ignore...)
	}
	fromFile, _ := loadIgnoreFile(ignPath)
	return &walker{ctx: ctx, root: root, ignore: append(extra, fromFile...)}, nil
}

// skip reports whether an entry is hidden from both the tree and file list.
func (w *walker) skip(name, rel string) bool {
	if IGNORE_PATTERNS[name] || strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range w.ignore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// Tree returns the project's entries, directories first and then by name at
// every level.
func Tree(ctx context.Context, root string, opts *Options) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := newWalker(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return w.tree(w.root)
}

func (w *walker) tree(dir string) ([]*Entry, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []*Entry{}
	for _, de := range dirEntries {
		full := filepath.Join(dir, de.Name())
		rel, _ := filepath.Rel(w.root, full)
		rel = filepath.ToSlash(rel)
		if w.skip(de.Name(), rel) {
			continue
		}
		if de.IsDir() {
			children, err := w.tree(full)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				children = []*Entry{}
			}
			out = append(out, &Entry{Name: de.Name(), Path: rel, Type: TypeDirectory, Children: children})
			continue
		}
		out = append(out, &Entry{Name: de.Name(), Path: rel, Type: TypeFile})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type == TypeDirectory
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Files walks the project and returns every file reg has a configuration for,
// in lexical order of relative path.
func Files(ctx context.Context, root string, reg *lang.Registry, opts *Options) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := newWalker(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == w.root {
			return nil
		}
		rel, _ := filepath.Rel(w.root, path)
		rel = filepath.ToSlash(rel)
		if w.skip(d.Name(), rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if cfg, ok := reg.Lookup(rel); ok {
			files = append(files, FileInfo{Path: path, RelPath: rel, Language: cfg.Language})
		}
		return nil
	})
	return files, err
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}

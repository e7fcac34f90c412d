package annotation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DirName is the per-project directory that holds annotation data.
const DirName = ".syl"

// ErrInvalidSourceFile is returned for source file ids that are absolute or
// escape the project root.
var ErrInvalidSourceFile = errors.New("invalid source file")

var _ Store = (*FileStore)(nil)

// FileStore keeps one JSON document per source file under a directory,
// at <dir>/<sourceFile>.json.
type FileStore struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir (usually <project>/.syl).
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Dir returns the directory holding the annotation documents.
func (s *FileStore) Dir() string { return s.dir }

// CleanSourceFile normalizes a project-relative source file id to forward
// slashes, rejecting ids that are empty, absolute or outside the root.
func CleanSourceFile(sourceFile string) (string, error) {
	clean := path.Clean(filepath.ToSlash(sourceFile))
	if sourceFile == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSourceFile, sourceFile)
	}
	return clean, nil
}

// docFor returns the document path of an already cleaned source file id.
func (s *FileStore) docFor(clean string) string {
	return filepath.Join(s.dir, filepath.FromSlash(clean)+".json")
}

// Load reads the annotations of sourceFile.
func (s *FileStore) Load(_ context.Context, sourceFile string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(sourceFile)
}

func (s *FileStore) load(sourceFile string) (*File, error) {
	clean, err := CleanSourceFile(sourceFile)
	if err != nil {
		return nil, err
	}
	p := s.docFor(clean)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return NewFile(clean), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	if f.Annotations == nil {
		f.Annotations = map[string][]Annotation{}
	}
	// The document's location is authoritative: a moved document belongs to
	// the file it now sits under.
	f.SourceFile = clean
	if f.Version == 0 {
		f.Version = Version
	}
	return f, nil
}

// save rewrites the document of sourceFile with f. A file without
// annotations is deleted.
func (s *FileStore) save(sourceFile string, f *File) error {
	clean, err := CleanSourceFile(sourceFile)
	if err != nil {
		return err
	}
	p := s.docFor(clean)
	if len(f.Annotations) == 0 {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove annotations: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Add stores a new annotation and returns it.
func (s *FileStore) Add(_ context.Context, sourceFile, semPath, body, author string) (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(sourceFile)
	if err != nil {
		return Annotation{}, err
	}
	a := f.Add(semPath, body, author, s.now())
	if err := s.save(sourceFile, f); err != nil {
		return Annotation{}, err
	}
	slog.Debug("annotation.add", "file", sourceFile, "path", semPath, "id", a.ID)
	return a, nil
}

// Update replaces the body of an existing annotation.
func (s *FileStore) Update(_ context.Context, sourceFile, semPath, id, body string) (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(sourceFile)
	if err != nil {
		return Annotation{}, err
	}
	a, err := f.Update(semPath, id, body, s.now())
	if err != nil {
		return Annotation{}, err
	}
	if err := s.save(sourceFile, f); err != nil {
		return Annotation{}, err
	}
	return a, nil
}

// Remove deletes an annotation and reports whether it existed.
func (s *FileStore) Remove(_ context.Context, sourceFile, semPath, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(sourceFile)
	if err != nil {
		return false, err
	}
	if !f.Remove(semPath, id) {
		return false, nil
	}
	if err := s.save(sourceFile, f); err != nil {
		return false, err
	}
	return true, nil
}

// ListPaths returns the annotated paths of sourceFile in ascending order.
func (s *FileStore) ListPaths(ctx context.Context, sourceFile string) ([]string, error) {
	f, err := s.Load(ctx, sourceFile)
	if err != nil {
		return nil, err
	}
	return f.Paths(), nil
}

// ForPath returns the annotations stored under one path.
func (s *FileStore) ForPath(ctx context.Context, sourceFile, semPath string) ([]Annotation, error) {
	f, err := s.Load(ctx, sourceFile)
	if err != nil {
		return nil, err
	}
	list := f.Annotations[semPath]
	if list == nil {
		list = []Annotation{}
	}
	return list, nil
}

// Files lists every source file with an annotation document.
func (s *FileStore) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		files = append(files, strings.TrimSuffix(filepath.ToSlash(rel), ".json"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list annotation files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Package workspace ties a project directory to its language registry and
// annotation store, and answers the questions the HTTP, MCP and CLI surfaces
// ask about it.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/config"
	"github.com/DeusData/syl/internal/discover"
	"github.com/DeusData/syl/internal/lang"
	"github.com/DeusData/syl/internal/parser"
	"github.com/DeusData/syl/internal/semantic"
)

var (
	// ErrPathTraversal is returned for paths that resolve outside the root.
	ErrPathTraversal = errors.New("invalid path")
	// ErrBinaryFile is returned when reading a file with a binary extension.
	ErrBinaryFile = errors.New("binary file")
	// ErrUnsupported is returned when no language is registered for a file.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrNoSuchPath is returned when a semantic path is absent from a file.
	ErrNoSuchPath = errors.New("semantic path not found")
)

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".zip": true, ".tar": true, ".gz": true, ".pdf": true, ".wasm": true,
}

// IsBinary reports whether rel has one of the extensions never served as text.
func IsBinary(rel string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(rel))]
}

// Project is one annotated source tree.
type Project struct {
	root  string
	reg   *lang.Registry
	store annotation.Store
	cfg   *config.Config
}

// New returns a project rooted at root. A nil cfg means defaults.
func New(root string, reg *lang.Registry, store annotation.Store, cfg *config.Config) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Project{root: abs, reg: reg, store: store, cfg: cfg}, nil
}

func (p *Project) Root() string             { return p.root }
func (p *Project) Registry() *lang.Registry { return p.reg }
func (p *Project) Store() annotation.Store  { return p.store }
func (p *Project) Config() *config.Config   { return p.cfg }

// Abs maps a project-relative path to an absolute one inside the root.
func (p *Project) Abs(rel string) (string, error) {
	full := filepath.Join(p.root, filepath.FromSlash(rel))
	if full != p.root && !strings.HasPrefix(full, p.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, rel)
	}
	return full, nil
}

// ReadFile returns the text of a project file.
func (p *Project) ReadFile(rel string) (string, error) {
	full, err := p.Abs(rel)
	if err != nil {
		return "", err
	}
	if IsBinary(rel) {
		return "", fmt.Errorf("%w: %s", ErrBinaryFile, rel)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

func (p *Project) discoverOptions() *discover.Options {
	return &discover.Options{Ignore: p.cfg.Ignore}
}

// Tree returns the browsable file tree of the project.
func (p *Project) Tree(ctx context.Context) ([]*discover.Entry, error) {
	return discover.Tree(ctx, p.root, p.discoverOptions())
}

// SourceFiles lists the project files with a registered language.
func (p *Project) SourceFiles(ctx context.Context) ([]discover.FileInfo, error) {
	return discover.Files(ctx, p.root, p.reg, p.discoverOptions())
}

// Analysis is the semantic structure of one file as it is on disk now.
type Analysis struct {
	File    string
	Config  *lang.PathConfig
	Content string
	Result  *semantic.Result
}

// Analyze reads, parses and builds the semantic paths of rel. The file is
// always re-read so paths match its current text.
func (p *Project) Analyze(ctx context.Context, rel string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, ok := p.reg.Lookup(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, rel)
	}
	content, err := p.ReadFile(rel)
	if err != nil {
		return nil, err
	}
	return analyzeContent(rel, cfg, content)
}

func analyzeContent(rel string, cfg *lang.PathConfig, content string) (*Analysis, error) {
	tree, err := parser.ParseFile(cfg, rel, []byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}
	defer tree.Close()
	res := semantic.Build(tree.Root(), cfg)
	analyzeTotal.WithLabelValues(string(cfg.Language)).Inc()
	slog.Debug("workspace.analyze", "file", rel, "lang", cfg.Language, "paths", len(res.PathMap))
	return &Analysis{File: rel, Config: cfg, Content: content, Result: res}, nil
}

// Node returns the node at semPath in rel together with the file analysis.
func (p *Project) Node(ctx context.Context, rel, semPath string) (*Analysis, *semantic.Node, error) {
	a, err := p.Analyze(ctx, rel)
	if err != nil {
		return nil, nil, err
	}
	n, ok := a.Result.Lookup(semPath)
	if !ok {
		return a, nil, fmt.Errorf("%w: %q in %s", ErrNoSuchPath, semPath, rel)
	}
	return a, n, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/config"
	"github.com/DeusData/syl/internal/generate"
	"github.com/DeusData/syl/internal/lang"
	"github.com/DeusData/syl/internal/store"
	"github.com/DeusData/syl/internal/workspace"
)

var version = "dev"

var (
	rootFlag    string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "syl",
	Short: "Annotate code by semantic path",
	Long: `syl attaches notes to declarations (functions, classes, methods...)
by their semantic path, e.g. "Foo.bar" or "helper[2]", so notes survive
edits elsewhere in the file and go orphaned when their target disappears.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("syl {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (default $SYL_PROJECT_ROOT or the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// projectRoot resolves the project root: --root, then SYL_PROJECT_ROOT,
// then the working directory.
func projectRoot() (string, error) {
	root := rootFlag
	if root == "" {
		root = os.Getenv("SYL_PROJECT_ROOT")
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	return abs, nil
}

// session is an opened project plus the resources that must be released.
type session struct {
	project *workspace.Project
	closer  func() error
}

func (s *session) Close() {
	if s.closer == nil {
		return
	}
	if err := s.closer(); err != nil {
		slog.Warn("store.close", "err", err)
	}
}

// openProject loads the config, installs the logger and opens the
// configured annotation store.
func openProject() (*session, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	cfg := config.Load(root)
	setupLogging(cfg)

	var (
		st     annotation.Store
		closer func() error
	)
	switch cfg.EffectiveStore() {
	case config.StoreSQLite:
		db, err := store.Open(root)
		if err != nil {
			return nil, err
		}
		st, closer = db, db.Close
	default:
		st = annotation.NewFileStore(filepath.Join(root, annotation.DirName))
	}

	p, err := workspace.New(root, lang.NewDefaultRegistry(), st, cfg)
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}
	slog.Debug("project.open", "root", root, "store", cfg.EffectiveStore())
	return &session{project: p, closer: closer}, nil
}

// setupLogging writes text logs to stderr; stdout carries command output
// and the MCP stdio transport.
func setupLogging(cfg *config.Config) {
	level := cfg.EffectiveLogLevel()
	if verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newGenerator builds a generator from OPENAI_API_KEY and OPENAI_BASE_URL.
// Without a key the generator reports itself unavailable.
func newGenerator(p *workspace.Project) *generate.Generator {
	client, err := generate.NewClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"))
	if err != nil && !errors.Is(err, generate.ErrUnavailable) {
		slog.Warn("generate.client", "err", err)
	}
	return generate.New(client, p)
}

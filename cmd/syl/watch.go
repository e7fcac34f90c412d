package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DeusData/syl/internal/watcher"
	"github.com/DeusData/syl/internal/workspace"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch annotated files and report new orphans",
	Long: `Poll the project's annotated source files. Whenever one changes or is
deleted its annotations are re-resolved and orphans are logged.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	sess, err := openProject()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := sess.project
	slog.Info("watch.start", "root", p.Root(), "interval", p.Config().EffectiveWatchInterval())
	watcher.New(p, reportOrphans(p)).Run(ctx)
	return nil
}

// reportOrphans re-resolves changed files and logs their orphans.
func reportOrphans(p *workspace.Project) watcher.ChangeFunc {
	return func(ctx context.Context, files []string) error {
		reports, err := p.ScanFiles(ctx, files)
		if err != nil {
			return err
		}
		for _, r := range reports {
			if r.Error != "" {
				continue
			}
			if r.OrphanCount == 0 {
				slog.Info("watch.resolved", "file", r.File, "annotations", r.Total)
				continue
			}
			for _, g := range r.Orphans {
				slog.Warn("watch.orphaned", "file", r.File, "path", g.Path, "annotations", len(g.Annotations))
			}
		}
		return nil
	}
}

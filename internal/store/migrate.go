package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DeusData/syl/internal/annotation"
)

// ImportStats summarizes one Import run.
type ImportStats struct {
	Files    int
	Imported int
	Skipped  int
	// Total is the number of annotations in the database afterwards.
	Total int
}

// Import copies every annotation held by src, keeping ids, authors and
// timestamps. Annotations whose id already exists are skipped, so running it
// twice is a no-op.
func (s *Store) Import(ctx context.Context, src annotation.Store) (ImportStats, error) {
	var stats ImportStats
	files, err := src.Files(ctx)
	if err != nil {
		return stats, fmt.Errorf("list source files: %w", err)
	}

	slog.Info("migrate.start", "files", len(files), "db", s.dbPath)
	for _, file := range files {
		f, err := src.Load(ctx, file)
		if err != nil {
			slog.Warn("migrate.file.err", "file", file, "err", err)
			continue
		}
		imported, skipped := 0, 0
		err = s.WithTransaction(ctx, func(tx *Store) error {
			imported, skipped = 0, 0
			for _, p := range f.Paths() {
				for _, a := range f.Annotations[p] {
					written, err := tx.insert(ctx, file, p, a)
					if err != nil {
						return err
					}
					if written {
						imported++
					} else {
						skipped++
					}
				}
			}
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("import %s: %w", file, err)
		}
		stats.Files++
		stats.Imported += imported
		stats.Skipped += skipped
	}
	if stats.Total, err = s.Count(ctx); err != nil {
		return stats, err
	}
	slog.Info("migrate.done", "files", stats.Files, "imported", stats.Imported, "skipped", stats.Skipped, "total", stats.Total)
	return stats, nil
}

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/orphan"
	"github.com/DeusData/syl/internal/semantic"
)

// Resolution is the annotation state of one file joined against its current
// semantic paths.
type Resolution struct {
	Annotations map[string][]annotation.Annotation `json:"annotations"`
	Nodes       []*semantic.Node                   `json:"nodes"`
	Orphans     []orphan.Group                     `json:"orphans"`

	File      string                `json:"-"`
	Supported bool                  `json:"-"`
	Resolved  []annotation.Resolved `json:"-"`
	Report    orphan.Report         `json:"-"`
}

// Resolve loads the annotations of rel and resolves them against the file as
// it is on disk. Files without a registered language return their
// annotations unresolved. A deleted source file orphans all its annotations.
func (p *Project) Resolve(ctx context.Context, rel string) (*Resolution, error) {
	f, err := p.store.Load(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	out := &Resolution{
		Annotations: f.Annotations,
		Nodes:       []*semantic.Node{},
		Orphans:     []orphan.Group{},
		File:        rel,
		Resolved:    []annotation.Resolved{},
		Report:      orphan.Detect(nil),
	}

	cfg, ok := p.reg.Lookup(rel)
	if !ok {
		return out, nil
	}
	out.Supported = true

	var res *semantic.Result
	a, err := p.Analyze(ctx, rel)
	switch {
	case err == nil:
		res = a.Result
		out.Nodes = res.Roots
	case isNotExist(err):
		slog.Debug("workspace.resolve.missing", "file", rel)
	default:
		return nil, err
	}

	out.Resolved = annotation.Resolve(f, res)
	out.Report = orphan.Detect(out.Resolved)
	out.Orphans = orphan.GroupByPath(out.Report)

	resolveTotal.WithLabelValues(string(cfg.Language)).Inc()
	orphansFound.Add(float64(out.Report.OrphanCount))
	return out, nil
}

// FileReport is the orphan summary of one annotated file.
type FileReport struct {
	File        string         `json:"file"`
	Total       int            `json:"total"`
	OrphanCount int            `json:"orphanCount"`
	Orphans     []orphan.Group `json:"orphans"`
	Error       string         `json:"error,omitempty"`
}

// Scan resolves every annotated file of the project concurrently and
// returns one report per file, sorted by file.
func (p *Project) Scan(ctx context.Context) ([]FileReport, error) {
	files, err := p.store.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("list annotated files: %w", err)
	}
	return p.ScanFiles(ctx, files)
}

// ScanFiles is Scan restricted to the given files, reported in input order.
func (p *Project) ScanFiles(ctx context.Context, files []string) ([]FileReport, error) {
	start := time.Now()
	reports := make([]FileReport, len(files))

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.EffectiveScanConcurrency())
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := p.Resolve(ctx, file)
			if err != nil {
				slog.Warn("workspace.scan.file", "file", file, "err", err)
				reports[i] = FileReport{File: file, Orphans: []orphan.Group{}, Error: err.Error()}
				return nil
			}
			reports[i] = FileReport{
				File:        file,
				Total:       r.Report.Total,
				OrphanCount: r.Report.OrphanCount,
				Orphans:     r.Orphans,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	scanDuration.Observe(time.Since(start).Seconds())
	return reports, nil
}

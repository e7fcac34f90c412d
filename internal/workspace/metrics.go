package workspace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analyzeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syl_analyze_total",
		Help: "Files parsed into semantic paths, by language",
	}, []string{"language"})

	resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syl_resolve_total",
		Help: "Annotation resolutions, by language",
	}, []string{"language"})

	orphansFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syl_orphans_found_total",
		Help: "Orphaned annotations reported by resolutions",
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "syl_scan_duration_seconds",
		Help:    "Duration of project-wide orphan scans",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sorlens",
		Name:      "files_processed_total",
		Help:      "Processed source files by mode and status.",
	}, []string{"mode", "status"})

	filesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sorlens",
		Name:      "files_skipped_total",
		Help:      "Skipped source files by skip kind.",
	}, []string{"kind"})

	fileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sorlens",
		Name:      "file_duration_seconds",
		Help:      "Time spent extracting one source file.",
		Buckets:   prometheus.DefBuckets,
	})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sorlens",
		Name:      "batches_total",
		Help:      "Analysis batches by outcome.",
	}, []string{"outcome"})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the three top-level sync operations. Registered on the default
// registry; exposition is the embedding process's concern.
var (
	PullRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasttrack_pull_runs_total",
		Help: "Completed pull-sync runs by outcome.",
	}, []string{"outcome"})

	PullRowsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fasttrack_pull_rows_upserted_total",
		Help: "Rows created or updated by pull-sync.",
	})

	PullRowsSoftDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fasttrack_pull_rows_soft_deleted_total",
		Help: "Rows soft-deleted because they vanished from the source.",
	})

	CellWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fasttrack_cell_writes_total",
		Help: "Targeted write-back cell writes by outcome.",
	}, []string{"outcome"})

	PositionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fasttrack_position_fallbacks_total",
		Help: "Write-backs that required a full-sheet relocation scan.",
	})

	ArchivedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fasttrack_archived_rows_total",
		Help: "Rows formatted as archived by the archival sweep.",
	})
)

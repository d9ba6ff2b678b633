package plan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	previewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "allocator_plan_previews_total",
		Help: "Total number of allocation plans previewed",
	})

	commitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "allocator_plan_commits_total",
		Help: "Total number of allocation plans committed",
	})

	commitConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "allocator_plan_commit_conflicts_total",
		Help: "Total number of rejected confirm calls",
	}, []string{"reason"})

	prunedPreviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "allocator_plan_pruned_previews_total",
		Help: "Total number of expired previewed plans pruned",
	})
)

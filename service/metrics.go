package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	accessDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileshare_access_decisions_total",
			Help: "Access resolutions by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	activityEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileshare_activity_entries_total",
			Help: "Activity log entries written, by action.",
		},
		[]string{"action"},
	)

	activityWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileshare_activity_write_failures_total",
			Help: "Activity log entries that could not be written, by action.",
		},
		[]string{"action"},
	)
)

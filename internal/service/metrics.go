package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeMirrorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_store_mirror_failures_total",
			Help: "Mutations applied in memory that the store failed to persist",
		},
		[]string{"operation", "store"},
	)

	tasksLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_tasks_loaded",
			Help: "Number of tasks held by the agenda after the last load",
		},
	)

	adviceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_advice_requests_total",
			Help: "Assistant questions by outcome",
		},
		[]string{"outcome"},
	)
)

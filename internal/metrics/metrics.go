package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clubescore",
		Name:      "reports_applied_total",
		Help:      "Number of score reports applied to a unit ledger.",
	})

	ReportsEdited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clubescore",
		Name:      "reports_edited_total",
		Help:      "Number of score reports reversed and reapplied in place.",
	})

	ReportsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "clubescore",
		Name:      "reports_deleted_total",
		Help:      "Number of score reports reversed and removed from history.",
	})

	ScoreboardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "clubescore",
		Name:      "scoreboard_clients",
		Help:      "Currently connected live scoreboard subscribers.",
	})
)

package reqlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Emission modes for RecordsTotal.
const (
	modeImmediate = "immediate"
	modeFinish    = "finish"
	modeClose     = "close"
)

var (
	// RecordsTotal counts emitted access-log records.
	// Labels: level (trace..fatal), mode (immediate, finish, close)
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reqlog",
			Name:      "records_total",
			Help:      "Total number of access-log records emitted, by level and emission mode",
		},
		[]string{"level", "mode"},
	)
)

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SizesCalculated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobs_sizes_calculated_total",
			Help: "Total number of next-trade sizes computed (by strategy and outcome).",
		},
		[]string{"strategy", "outcome"},
	)

	NextSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gobs_next_size",
			Help: "Most recently computed next-trade size per strategy.",
		},
		[]string{"strategy"},
	)

	SizingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobs_sizing_errors_total",
			Help: "Sizing calls rejected, by reason.",
		},
		[]string{"reason"},
	)

	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobs_orders_submitted_total",
			Help: "Total number of orders submitted (by strategy).",
		},
		[]string{"strategy"},
	)

	PositionsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gobs_positions_open",
			Help: "Current signed position per symbol.",
		},
		[]string{"symbol"},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gobs_equity",
			Help: "Current equity of the executor (paper or live).",
		},
	)
)

func init() {
	prometheus.MustRegister(SizesCalculated, NextSize, SizingErrors,
		OrdersSubmitted, PositionsOpen, EquityGauge)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

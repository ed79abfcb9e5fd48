package worker

import "github.com/prometheus/client_golang/prometheus"

var (
	stepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "worker",
			Name:      "steps_total",
			Help:      "Steps taken by running games, by outcome.",
		},
		[]string{"outcome"},
	)
	gamesRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "engine",
			Subsystem: "worker",
			Name:      "games_running",
			Help:      "Games currently being ticked.",
		},
	)
)

func init() {
	prometheus.MustRegister(stepsTotal, gamesRunning)
}

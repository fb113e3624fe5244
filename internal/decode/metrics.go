package decode

import "github.com/prometheus/client_golang/prometheus"

var (
	tokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "decode",
			Name:      "tokens_total",
			Help:      "Total number of tokens generated by greedy decoding",
		},
	)

	durationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelreg",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Wall time of the generation loop",
			Buckets:   prometheus.DefBuckets,
		},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "decode",
			Name:      "failures_total",
			Help:      "Decode runs that failed, by stage",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(tokensTotal, durationSeconds, failuresTotal)
}

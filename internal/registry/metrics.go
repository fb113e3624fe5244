package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	handlesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelreg",
			Subsystem: "registry",
			Name:      "handles",
			Help:      "Number of loaded model handles",
		},
	)

	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "registry",
			Name:      "loads_total",
			Help:      "Model load attempts by result",
		},
		[]string{"result"},
	)

	unloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelreg",
			Subsystem: "registry",
			Name:      "unloads_total",
			Help:      "Total number of unloaded model handles",
		},
	)

	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelreg",
			Subsystem: "registry",
			Name:      "load_duration_seconds",
			Help:      "Time spent in the engine loading a model",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(handlesGauge, loadsTotal, unloadsTotal, loadDuration)
}

package analytics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var summarizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "portfolio_analytics_summarize_duration_seconds",
	Help:    "Time to compute an analytics summary",
	Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
}, []string{"period", "outcome"})

func observeSummarize(period Period, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	summarizeDuration.WithLabelValues(string(period), outcome).Observe(time.Since(started).Seconds())
}

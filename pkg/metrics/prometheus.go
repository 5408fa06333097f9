package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus. The collectors are
// process-wide, so every Recorder shares them.
type Recorder struct {
	*collectors
}

type collectors struct {
	operations  *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
	lastActual  *prometheus.GaugeVec
	predicted   *prometheus.GaugeVec
	trainLoss   *prometheus.GaugeVec
	valLoss     *prometheus.GaugeVec
	samples     *prometheus.GaugeVec
	sentiment   *prometheus.GaugeVec
	headlines   *prometheus.GaugeVec
}

var (
	shared     *collectors
	sharedOnce sync.Once
)

// New returns a Recorder backed by the default registry.
func New() *Recorder {
	sharedOnce.Do(func() {
		shared = &collectors{
			operations: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "stockx_operation_duration_seconds",
					Help:    "Duration of prediction service operations",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300, 900},
				},
				[]string{"operation", "status"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stockx_errors_total",
					Help: "Errors by kind",
				},
				[]string{"kind"},
			),
			lastActual: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_last_actual_price",
					Help: "Last actual close seen when predicting",
				},
				[]string{"symbol"},
			),
			predicted: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_next_day_prediction",
					Help: "Latest next-day close prediction",
				},
				[]string{"symbol"},
			),
			trainLoss: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_training_loss",
					Help: "Final-epoch training MSE (normalized scale)",
				},
				[]string{"symbol"},
			),
			valLoss: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_validation_loss",
					Help: "Final-epoch validation MSE (normalized scale)",
				},
				[]string{"symbol"},
			),
			samples: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_training_samples",
					Help: "Number of windows used in the last training run",
				},
				[]string{"symbol"},
			),
			sentiment: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_sentiment_score",
					Help: "Latest aggregated news sentiment",
				},
				[]string{"symbol"},
			),
			headlines: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "stockx_sentiment_headlines",
					Help: "Headlines behind the latest sentiment score",
				},
				[]string{"symbol"},
			),
		}
	})
	return &Recorder{collectors: shared}
}

func (r *Recorder) RecordOperation(op, status string, d time.Duration) {
	r.operations.WithLabelValues(op, status).Observe(d.Seconds())
}

func (r *Recorder) RecordError(kind string) {
	if kind == "" {
		kind = "internal"
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordPrediction(symbol string, lastActual, predicted float64) {
	r.lastActual.WithLabelValues(symbol).Set(lastActual)
	r.predicted.WithLabelValues(symbol).Set(predicted)
}

func (r *Recorder) RecordTraining(symbol string, loss, valLoss float64, samples int) {
	r.trainLoss.WithLabelValues(symbol).Set(loss)
	r.valLoss.WithLabelValues(symbol).Set(valLoss)
	r.samples.WithLabelValues(symbol).Set(float64(samples))
}

func (r *Recorder) RecordSentiment(symbol string, score float64, samples int) {
	r.sentiment.WithLabelValues(symbol).Set(score)
	r.headlines.WithLabelValues(symbol).Set(float64(samples))
}

// Nop discards everything. Useful for tests and the CLI.
type Nop struct{}

func (Nop) RecordOperation(string, string, time.Duration) {}
func (Nop) RecordError(string)                            {}
func (Nop) RecordPrediction(string, float64, float64)     {}
func (Nop) RecordTraining(string, float64, float64, int)  {}
func (Nop) RecordSentiment(string, float64, int)          {}

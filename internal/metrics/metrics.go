// Package metrics records skewscan runs as Prometheus metrics. Each Recorder
// owns its registry, so several runs in one process never share state; the
// registry is exported as a node_exporter textfile after a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kalkar/skewscan/internal/model"
)

const namespace = "skewscan"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Recorder holds the collectors for one process.
type Recorder struct {
	registry *prometheus.Registry

	flaggedPages     *prometheus.GaugeVec
	corpusPages      prometheus.Gauge
	ocrImages        *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	classifyDuration prometheus.Histogram
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		flaggedPages: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "flagged_pages",
				Help:      "Pages flagged by the last classification, by reason",
			},
			[]string{"reason"},
		),
		corpusPages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "corpus_pages",
				Help:      "Pages in the last classified corpus",
			},
		),
		ocrImages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ocr_images_total",
				Help:      "Images run through OCR by result",
			},
			[]string{"result"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Page scans downloaded by result",
			},
			[]string{"result"},
		),
		classifyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "classify_duration_seconds",
				Help:      "Time spent classifying a corpus",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	r.registry.MustRegister(r.flaggedPages, r.corpusPages, r.ocrImages, r.downloads, r.classifyDuration)
	return r
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the outcome of a classification run.
// Every reason gets a sample, zero included.
func (r *Recorder) ObserveRun(run *model.Run) {
	if run == nil {
		return
	}
	r.corpusPages.Set(float64(run.CorpusSize))
	r.classifyDuration.Observe(run.Duration.Seconds())
	for _, reason := range model.AllSkewReasons() {
		count := 0
		if run.Result != nil {
			count = run.Result.Count(reason)
		}
		r.flaggedPages.WithLabelValues(reason.String()).Set(float64(count))
	}
}

// ObserveClassify records a classification duration on its own.
func (r *Recorder) ObserveClassify(d time.Duration) {
	r.classifyDuration.Observe(d.Seconds())
}

// IncOCR counts one recognized image.
func (r *Recorder) IncOCR(result string) {
	r.ocrImages.WithLabelValues(result).Inc()
}

// IncDownload counts one downloaded scan.
func (r *Recorder) IncDownload(result string) {
	r.downloads.WithLabelValues(result).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

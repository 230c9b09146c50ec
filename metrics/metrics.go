package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	sourceHeightGauge       prometheus.Gauge
	latestSessionGauge      prometheus.Gauge
	latestPollGauge         prometheus.Gauge
	remoteLookupCounter     prometheus.Counter
	scannedRecordCounter    prometheus.Counter
	reportDurationHistogram prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := Metrics{
		// metrics for the remote state source
		sourceHeightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_source_block_height", namespace),
			Help: "The latest known block height of the ledger",
		}),
		latestSessionGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_latest_signing_session_id", namespace),
			Help: "The latest located signing session id",
		}),
		latestPollGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_latest_poll_id", namespace),
			Help: "The latest located poll id",
		}),
		// metrics for scan cost and latency
		remoteLookupCounter: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_remote_lookups_total", namespace),
			Help: "The total number of remote point lookups issued",
		}),
		scannedRecordCounter: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_scanned_records_total", namespace),
			Help: "The total number of record ids visited by scans",
		}),
		reportDurationHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_report_duration_seconds", namespace),
			Help:    "The time it takes to produce one reconciliation report",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	return &m
}

func (metrics *Metrics) SetSourceHeight(height uint64) {
	metrics.sourceHeightGauge.Set(float64(height))
}

func (metrics *Metrics) SetLatestSessionID(id uint64) {
	metrics.latestSessionGauge.Set(float64(id))
}

func (metrics *Metrics) SetLatestPollID(id uint64) {
	metrics.latestPollGauge.Set(float64(id))
}

func (metrics *Metrics) IncRemoteLookups() {
	metrics.remoteLookupCounter.Inc()
}

func (metrics *Metrics) AddScannedRecords(count uint32) {
	metrics.scannedRecordCounter.Add(float64(count))
}

func (metrics *Metrics) ObserveReportDuration(duration time.Duration) {
	metrics.reportDurationHistogram.Observe(duration.Seconds())
}

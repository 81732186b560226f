package metered

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	hitLabels  = prometheus.Labels{"result": "hit"}
	missLabels = prometheus.Labels{"result": "miss"}
)

type cacheMetrics struct {
	putCount   prometheus.Counter
	putErrors  prometheus.Counter
	getCount   *prometheus.CounterVec
	getTime    *prometheus.CounterVec
	flushCount *prometheus.CounterVec
	flushTime  prometheus.Histogram
	pending    prometheus.Gauge
	epoch      prometheus.Gauge
	poisoned   prometheus.Gauge
}

func newMetrics(namespace string, reg prometheus.Registerer) (*cacheMetrics, error) {
	m := &cacheMetrics{
		putCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "put_count",
			Help:      "number of puts accepted into the staging buffer",
		}),
		putErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "put_errors",
			Help:      "number of rejected puts",
		}),
		getCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "get_count",
			Help:      "number of gets, by result",
		}, []string{"result"}),
		getTime: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "get_time",
			Help:      "time spent (ns) in gets, by result",
		}, []string{"result"}),
		flushCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flush_count",
			Help:      "number of flushes, by outcome",
		}, []string{"outcome"}),
		flushTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_seconds",
			Help:      "duration of successful flushes",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending",
			Help:      "writes waiting for the next flush",
		}),
		epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "epoch",
			Help:      "number of buffer swaps",
		}),
		poisoned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poisoned",
			Help:      "1 once the cache refuses writes",
		}),
	}
	return m, errors.Join(
		reg.Register(m.putCount),
		reg.Register(m.putErrors),
		reg.Register(m.getCount),
		reg.Register(m.getTime),
		reg.Register(m.flushCount),
		reg.Register(m.flushTime),
		reg.Register(m.pending),
		reg.Register(m.epoch),
		reg.Register(m.poisoned),
	)
}

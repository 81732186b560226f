// Package metered wraps a greenblue.Cache with prometheus metrics.
package metered

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/greenblue"
)

var _ greenblue.Cache[string, struct{}] = (*Cache[string, struct{}])(nil)

type Cache[K comparable, V any] struct {
	greenblue.Cache[K, V]
	metrics *cacheMetrics
}

// New registers the metrics under namespace and wraps c.
func New[K comparable, V any](
	namespace string,
	reg prometheus.Registerer,
	c greenblue.Cache[K, V],
) (*Cache[K, V], error) {
	metrics, err := newMetrics(namespace, reg)
	return &Cache[K, V]{
		Cache:   c,
		metrics: metrics,
	}, err
}

func (c *Cache[K, V]) Put(ctx context.Context, key K, value V) error {
	err := c.Cache.Put(ctx, key, value)
	if err != nil {
		c.metrics.putErrors.Inc()
		c.observe(ctx)
		return err
	}
	c.metrics.putCount.Inc()
	c.metrics.pending.Inc()
	return nil
}

func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	start := time.Now()
	value, has := c.Cache.Get(ctx, key)
	c.countGet(has, time.Since(start))
	return value, has
}

func (c *Cache[K, V]) GetMany(ctx context.Context, keys []K) []greenblue.Result[V] {
	start := time.Now()
	out := c.Cache.GetMany(ctx, keys)
	if len(out) == 0 {
		return out
	}
	per := time.Since(start) / time.Duration(len(out))
	for _, r := range out {
		c.countGet(r.Found, per)
	}
	return out
}

func (c *Cache[K, V]) Lookup(ctx context.Context, key K) (V, error) {
	start := time.Now()
	value, err := c.Cache.Lookup(ctx, key)
	c.countGet(err == nil, time.Since(start))
	return value, err
}

func (c *Cache[K, V]) countGet(has bool, d time.Duration) {
	labels := missLabels
	if has {
		labels = hitLabels
	}
	c.metrics.getCount.With(labels).Inc()
	c.metrics.getTime.With(labels).Add(float64(d))
}

func (c *Cache[K, V]) Flush(ctx context.Context) error {
	start := time.Now()
	err := c.Cache.Flush(ctx)
	c.metrics.flushCount.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		c.metrics.flushTime.Observe(time.Since(start).Seconds())
	}
	c.observe(ctx)
	return err
}

// observe resyncs the gauges from Status.
func (c *Cache[K, V]) observe(ctx context.Context) {
	st := c.Cache.Status(ctx)
	c.metrics.pending.Set(float64(st.Pending))
	c.metrics.epoch.Set(float64(st.Epoch))
	if st.Poisoned {
		c.metrics.poisoned.Set(1)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, greenblue.ErrCannotSwitch):
		return "in_progress"
	case errors.Is(err, greenblue.ErrDrainTimeout):
		return "drain_timeout"
	case errors.Is(err, greenblue.ErrClosed):
		return "closed"
	case errors.Is(err, greenblue.ErrCannotWrite):
		return "poisoned"
	default:
		return "error"
	}
}

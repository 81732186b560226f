// Package bench accumulates read latency figures for the gbbench driver.
package bench

import (
	"fmt"
	"time"
)

// Metrics tracks per-batch and running latency averages. It is not safe for
// concurrent use; each reader owns one.
type Metrics struct {
	BatchCount    int
	BatchDuration time.Duration
	BatchAvg      time.Duration
	BatchMax      time.Duration // worst per-request average over all batches
	AllCount      int
	AllDuration   time.Duration
	AllAvg        time.Duration
	Timeouts      int // requests in batches whose average exceeded the timeout
}

// Observe records a batch of requests that took d in total.
func (m *Metrics) Observe(requests int, d, timeout time.Duration) {
	if requests <= 0 {
		return
	}
	m.BatchCount = requests
	m.BatchDuration = d
	m.BatchAvg = d / time.Duration(requests)
	if m.BatchAvg > m.BatchMax {
		m.BatchMax = m.BatchAvg
	}
	m.AllCount += requests
	m.AllDuration += d
	m.AllAvg = m.AllDuration / time.Duration(m.AllCount)
	if m.BatchAvg > timeout {
		m.Timeouts += requests
	}
}

func (m Metrics) String() string {
	return fmt.Sprintf("batch %d in %s (avg %s, max %s) all %d (avg %s) timeouts %d",
		m.BatchCount, m.BatchDuration, m.BatchAvg, m.BatchMax,
		m.AllCount, m.AllAvg, m.Timeouts)
}

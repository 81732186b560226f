package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/greenblue"
	"github.com/unkn0wn-root/greenblue/internal/bench"
)

type driver struct {
	cache greenblue.Cache[string, string]
	log   *zap.Logger
}

func (d *driver) write(ctx context.Context, throttle time.Duration) error {
	d.log.Info("write round started", zap.Int("keys", *writeIters))
	start := time.Now()
	for i := 1; i <= *writeIters; i++ {
		if err := d.cache.Put(ctx, strconv.Itoa(i), "@"+strconv.Itoa(100*i)); err != nil {
			return err
		}
		if throttle > 0 {
			time.Sleep(throttle)
		}
		if *writeFlush > 0 && i%*writeFlush == 0 {
			if err := d.flush(ctx); err != nil {
				return err
			}
		}
	}
	if err := d.flush(ctx); err != nil {
		return err
	}
	d.log.Info("write round done",
		zap.Duration("took", time.Since(start)),
		zap.Stringer("status", d.cache.Status(ctx)))
	return nil
}

// flush retries while a background publisher holds the permit.
func (d *driver) flush(ctx context.Context) error {
	for {
		err := d.cache.Flush(ctx)
		if !errors.Is(err, greenblue.ErrCannotSwitch) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (d *driver) read(ctx context.Context, id int) error {
	var m bench.Metrics
	keys := make([]string, *batchSize)
	for i := 1; i <= *readIters; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		for k := range keys {
			keys[k] = strconv.Itoa(1 + rand.IntN(*writeIters))
		}
		res := d.cache.GetMany(ctx, keys)
		m.Observe(len(keys), time.Since(start), *readTimeout)

		if *readReport > 0 && i%*readReport == 0 {
			d.log.Info("reader progress",
				zap.Int("reader", id),
				zap.Int("iter", i),
				zap.String("key", keys[0]),
				zap.String("value", res[0].Value),
				zap.Bool("found", res[0].Found),
				zap.Stringer("metrics", m),
				zap.Stringer("status", d.cache.Status(ctx)))
		}
	}
	return nil
}

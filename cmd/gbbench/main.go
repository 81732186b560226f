// gbbench drives a greenblue cache with one writer and many batch readers
// and reports read latency while flushes run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/greenblue"
	"github.com/unkn0wn-root/greenblue/autoflush"
	gbzap "github.com/unkn0wn-root/greenblue/log/zap"
	"github.com/unkn0wn-root/greenblue/metered"
	"github.com/unkn0wn-root/greenblue/store"
)

var (
	backend     = flag.String("backend", "map", "buffer backend: map, syncmap, bigcache, ristretto, redis")
	redisAddr   = flag.String("redis-addr", "localhost:6379", "redis address for -backend=redis")
	readers     = flag.Int("readers", 3, "concurrent readers")
	readIters   = flag.Int("read-iters", 200_000, "batches per reader")
	readReport  = flag.Int("read-report", 20_000, "report every n batches")
	batchSize   = flag.Int("batch", 10, "keys per read batch")
	readTimeout = flag.Duration("read-timeout", time.Millisecond, "per-request latency counted as a timeout")
	writeIters  = flag.Int("write-iters", 100_000, "keys written per round")
	writeFlush  = flag.Int("write-flush", 100_000, "flush every n writes; 0 = only at round end")
	throttle    = flag.Duration("write-throttle", 0, "pause between writes after the first round")
	rounds      = flag.Int("rounds", 3, "write rounds while readers run")
	roundDelay  = flag.Duration("round-delay", 5*time.Second, "pause before each write round")
	auto        = flag.Int("auto-threshold", 0, "background flush once this many writes are pending; 0 = off")
	drain       = flag.Duration("drain-timeout", 5*time.Second, "flush drain timeout")
	metricsAddr = flag.String("metrics-addr", "", "serve prometheus metrics on this address")
	verbose     = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("gbbench failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, logger *zap.Logger) error {
	if *batchSize < 1 || *writeIters < 1 {
		return fmt.Errorf("-batch and -write-iters must be positive")
	}
	buffers, err := newBuffers(ctx, *backend, *redisAddr, *writeIters)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	cache, err := newCache(ctx, buffers, reg, greenblue.Options[string, string]{
		Name:         "gbbench",
		Capacity:     *writeIters,
		DrainTimeout: *drain,
		Logger:       gbzap.New(logger),
	})
	if err != nil {
		return err
	}
	defer cache.Close(context.WithoutCancel(ctx))

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	if *auto > 0 {
		pub, err := autoflush.New(cache, autoflush.Config{
			Threshold: *auto,
			MaxRate:   rate.Every(10 * time.Millisecond),
			Logger:    gbzap.New(logger),
		})
		if err != nil {
			return err
		}
		defer pub.Close(context.WithoutCancel(ctx))
	}

	d := &driver{cache: cache, log: logger}

	// seed the cache before readers start
	if err := d.write(ctx, 0); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	logger.Info("spawning readers", zap.Int("readers", *readers))
	for i := 0; i < *readers; i++ {
		id := i
		g.Go(func() error { return d.read(gctx, id) })
	}
	g.Go(func() error {
		for r := 0; r < *rounds; r++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-time.After(*roundDelay):
			}
			if err := d.write(gctx, *throttle); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

// newCache builds the metered cache over buffers. On failure the buffers are
// closed, which for redis also releases the client.
func newCache(
	ctx context.Context,
	buffers [2]store.Store[string, string],
	reg prometheus.Registerer,
	opts greenblue.Options[string, string],
) (*metered.Cache[string, string], error) {
	opts.Buffers = buffers
	inner, err := greenblue.New(opts)
	if err != nil {
		return nil, errors.Join(err, closeBuffers(ctx, buffers))
	}
	cache, err := metered.New("gbbench", reg, inner)
	if err != nil {
		return nil, errors.Join(err, inner.Close(ctx))
	}
	return cache, nil
}

func closeBuffers(ctx context.Context, buffers [2]store.Store[string, string]) error {
	var errs []error
	for _, b := range buffers {
		if b != nil {
			errs = append(errs, b.Close(ctx))
		}
	}
	return errors.Join(errs...)
}

// Package metrics exposes prime-search telemetry as prometheus collectors,
// served on demand while a key is being generated.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgeis/mpa/internal/mpa"
)

// Collector bundles the prime-search counters on a private registry.
type Collector struct {
	registry *prometheus.Registry

	candidates  prometheus.Counter
	sieveHits   prometheus.Counter
	mrCalls     prometheus.Counter
	resets      prometheus.Counter
	primesFound prometheus.Counter
}

// NewCollector creates and registers the counters.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpa_prime_search_iterations_total",
			Help: "Wheel iterations walked during prime search.",
		}),
		sieveHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpa_prime_search_sieve_rejections_total",
			Help: "Candidates rejected by the small-prime sieve.",
		}),
		mrCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpa_prime_search_miller_rabin_total",
			Help: "Miller-Rabin invocations during prime search.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpa_prime_search_resets_total",
			Help: "Prime searches restarted after the sieve offset overflowed.",
		}),
		primesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mpa_primes_found_total",
			Help: "Probable primes accepted.",
		}),
	}
	c.registry.MustRegister(c.candidates, c.sieveHits, c.mrCalls, c.resets, c.primesFound)
	return c
}

// ObserveSearch records the telemetry of one finished prime search.
func (c *Collector) ObserveSearch(stats mpa.SearchStats) {
	c.candidates.Add(float64(stats.Iterations))
	c.sieveHits.Add(float64(stats.SieveRejections))
	c.mrCalls.Add(float64(stats.MillerRabinCalls))
	c.resets.Add(float64(stats.Resets))
	c.primesFound.Inc()
}

// Handler returns the scrape endpoint for the private registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. Startup errors are
// returned; a graceful shutdown returns nil.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Package snapshot maintains the in-memory catalog copy that the discovery
// engine reads. It loads immutable snapshots from a Loader, swaps them in
// atomically, deduplicates concurrent loads and refreshes in the background
// on a jittered TTL.
package snapshot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qtota/offer-service/internal/discovery"
)

// Loader produces a fresh catalog snapshot, typically from the database.
type Loader interface {
	Load(ctx context.Context) (*discovery.Snapshot, error)
}

// Config contains the cache tunables.
type Config struct {
	// LoadTimeout bounds a single snapshot load.
	LoadTimeout time.Duration
	// TTL is the refresh interval of the background loop.
	TTL time.Duration
	// RefreshJitter randomizes the refresh interval to avoid synchronized
	// reloads across replicas.
	RefreshJitter time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() *Config {
	return &Config{
		LoadTimeout:   30 * time.Second,
		TTL:           5 * time.Minute,
		RefreshJitter: 30 * time.Second,
	}
}

// Cache holds the current catalog snapshot behind an atomic pointer and
// implements discovery.SnapshotSource. Readers never block on a load once
// warmup has completed; they see the previous snapshot until the swap.
type Cache struct {
	current atomic.Value // *discovery.Snapshot

	loader Loader
	config *Config
	sf     singleFlight

	breaker *CircuitBreaker
	gate    *WarmupGate
	metrics *MetricsRecorder
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// singleFlight deduplicates concurrent snapshot loads. A custom type instead
// of golang.org/x/sync/singleflight so the load runs on a dedicated context
// rather than the first caller's request context.
type singleFlight struct {
	mu   sync.Mutex
	call *inflightCall
}

type inflightCall struct {
	wg  sync.WaitGroup
	val *discovery.Snapshot
	err error
}

// Do executes fn once for all concurrent callers. The bool reports whether
// this caller executed the load itself.
func (g *singleFlight) Do(fn func() (*discovery.Snapshot, error)) (*discovery.Snapshot, error, bool) {
	g.mu.Lock()
	if g.call != nil {
		call := g.call
		g.mu.Unlock()
		call.wg.Wait()
		return call.val, call.err, false
	}

	call := &inflightCall{}
	call.wg.Add(1)
	g.call = call
	g.mu.Unlock()

	call.val, call.err = fn()
	call.wg.Done()

	g.mu.Lock()
	g.call = nil
	g.mu.Unlock()

	return call.val, call.err, true
}

// NewCache creates a snapshot cache. A nil config selects the defaults.
func NewCache(loader Loader, config *Config) *Cache {
	if config == nil {
		config = DefaultConfig()
	}

	logger := log.With().Str("component", "snapshot_cache").Logger()
	ctx, cancel := context.WithCancel(context.Background())

	return &Cache{
		loader:  loader,
		config:  config,
		breaker: NewCircuitBreaker("snapshot_cache", DefaultCircuitBreakerConfig(), &logger),
		gate:    NewWarmupGate(&logger),
		metrics: NewMetricsRecorder(),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Warmup performs the initial load, opens the gate and starts the background
// refresh loop. It should be called once at startup.
func (c *Cache) Warmup(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("initial snapshot load: %w", err)
	}
	c.gate.Ready()

	c.wg.Add(1)
	go c.refreshLoop()
	return nil
}

// Refresh loads a fresh snapshot and swaps it in. Concurrent calls share a
// single load.
func (c *Cache) Refresh(ctx context.Context) error {
	if !c.breaker.Allow() {
		c.logger.Warn().
			Str("circuit_state", c.breaker.State().String()).
			Msg("Circuit breaker rejected snapshot load")
		return fmt.Errorf("snapshot load: circuit breaker %s", c.breaker.State())
	}

	_, err, _ := c.sf.Do(func() (*discovery.Snapshot, error) {
		// Dedicated load context so one caller's cancellation does not fail
		// the shared load.
		loadCtx, cancel := context.WithTimeout(context.Background(), c.config.LoadTimeout)
		defer cancel()

		start := time.Now()
		snap, loadErr := c.loader.Load(loadCtx)
		if loadErr != nil {
			c.breaker.RecordFailure(loadErr)
			c.metrics.RecordLoadError()
			return nil, loadErr
		}
		c.breaker.RecordSuccess()

		c.current.Store(snap)

		stores, branches, categories, products, offers := snap.Counts()
		c.metrics.RecordLoad(time.Since(start), map[string]int{
			"stores":     stores,
			"branches":   branches,
			"categories": categories,
			"products":   products,
			"offers":     offers,
		})

		c.logger.Info().
			Int("stores", stores).
			Int("branches", branches).
			Int("products", products).
			Int("offers", offers).
			Dur("duration", time.Since(start)).
			Msg("Loaded catalog snapshot")

		return snap, nil
	})
	return err
}

// Snapshot returns the current catalog snapshot. Before warmup completes it
// blocks until the first load or context cancellation.
func (c *Cache) Snapshot(ctx context.Context) (*discovery.Snapshot, error) {
	if snap := c.getCurrent(); snap != nil {
		return snap, nil
	}
	if !c.gate.Wait(ctx) {
		return nil, ctx.Err()
	}
	if snap := c.getCurrent(); snap != nil {
		return snap, nil
	}
	return nil, fmt.Errorf("snapshot cache: no snapshot available")
}

func (c *Cache) getCurrent() *discovery.Snapshot {
	val := c.current.Load()
	if val == nil {
		return nil
	}
	return val.(*discovery.Snapshot)
}

func (c *Cache) refreshLoop() {
	defer c.wg.Done()

	for {
		interval := c.config.TTL
		if c.config.RefreshJitter > 0 {
			interval += time.Duration(rand.Int63n(int64(c.config.RefreshJitter)))
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(interval):
		}

		if err := c.Refresh(c.ctx); err != nil {
			// Keep serving the previous snapshot; the next tick retries.
			c.logger.Error().Err(err).Msg("Background snapshot refresh failed")
		}
	}
}

// IsHealthy reports whether the cache holds a snapshot and the breaker allows
// loads.
func (c *Cache) IsHealthy() bool {
	if c.breaker.State() == CircuitOpen {
		return false
	}
	if !c.gate.IsReady() {
		return false
	}
	return c.getCurrent() != nil
}

// Freshness describes the age of the current snapshot.
type Freshness struct {
	LoadedAt time.Time
	IsStale  bool
}

// GetFreshness returns the load time of the current snapshot and whether it
// is older than the TTL.
func (c *Cache) GetFreshness() Freshness {
	snap := c.getCurrent()
	if snap == nil {
		return Freshness{IsStale: true}
	}
	return Freshness{
		LoadedAt: snap.LoadedAt(),
		IsStale:  time.Since(snap.LoadedAt()) > c.config.TTL,
	}
}

// WaitForWarmup blocks until warmup completes or the context is cancelled.
func (c *Cache) WaitForWarmup(ctx context.Context) bool {
	return c.gate.Wait(ctx)
}

// Close stops the background refresh loop.
func (c *Cache) Close() error {
	c.cancel()
	c.wg.Wait()
	return nil
}

package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtota/offer-service/internal/discovery"
)

type stubLoader struct {
	loads int32
	delay time.Duration
	err   error
}

func (l *stubLoader) Load(ctx context.Context) (*discovery.Snapshot, error) {
	atomic.AddInt32(&l.loads, 1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	return discovery.NewSnapshot(
		[]*discovery.Store{{ID: 1, Name: "A"}},
		[]*discovery.Branch{{ID: 10, StoreID: 1}},
		nil, nil, nil,
	)
}

func testConfig() *Config {
	return &Config{
		LoadTimeout:   5 * time.Second,
		TTL:           time.Hour, // keep the refresh loop quiet during tests
		RefreshJitter: 0,
	}
}

// Concurrent refreshes must collapse into a single loader call.
func TestRefreshSingleFlight(t *testing.T) {
	loader := &stubLoader{delay: 100 * time.Millisecond}
	cache := NewCache(loader, testConfig())
	defer cache.Close()

	const numRequests = 100
	var wg sync.WaitGroup
	results := make(chan error, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- cache.Refresh(context.Background())
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&loader.loads))
}

func TestSnapshotBlocksUntilWarmup(t *testing.T) {
	cache := NewCache(&stubLoader{}, testConfig())
	defer cache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cache.Snapshot(ctx)
	assert.Error(t, err)

	require.NoError(t, cache.Warmup(context.Background()))

	snap, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	stores, branches, _, _, _ := snap.Counts()
	assert.Equal(t, 1, stores)
	assert.Equal(t, 1, branches)
}

func TestWarmupFailure(t *testing.T) {
	loader := &stubLoader{err: errors.New("db down")}
	cache := NewCache(loader, testConfig())
	defer cache.Close()

	err := cache.Warmup(context.Background())
	assert.Error(t, err)
	assert.False(t, cache.IsHealthy())
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	loader := &stubLoader{err: errors.New("db down")}
	cache := NewCache(loader, testConfig())
	defer cache.Close()

	for i := 0; i < DefaultCircuitBreakerConfig().MaxFailures; i++ {
		assert.Error(t, cache.Refresh(context.Background()))
	}
	assert.Equal(t, CircuitOpen, cache.breaker.State())

	// The open breaker rejects the load before the loader is invoked.
	before := atomic.LoadInt32(&loader.loads)
	assert.Error(t, cache.Refresh(context.Background()))
	assert.Equal(t, before, atomic.LoadInt32(&loader.loads))
}

func TestServesStaleSnapshotWhenRefreshFails(t *testing.T) {
	loader := &stubLoader{}
	cache := NewCache(loader, testConfig())
	defer cache.Close()

	require.NoError(t, cache.Warmup(context.Background()))

	loader.err = errors.New("db down")
	assert.Error(t, cache.Refresh(context.Background()))

	// Readers still get the previously loaded snapshot.
	snap, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestFreshness(t *testing.T) {
	cache := NewCache(&stubLoader{}, testConfig())
	defer cache.Close()

	assert.True(t, cache.GetFreshness().IsStale)

	require.NoError(t, cache.Warmup(context.Background()))

	f := cache.GetFreshness()
	assert.False(t, f.IsStale)
	assert.WithinDuration(t, time.Now(), f.LoadedAt, 5*time.Second)
}

func TestWaitForWarmup(t *testing.T) {
	cache := NewCache(&stubLoader{delay: 50 * time.Millisecond}, testConfig())
	defer cache.Close()

	go func() {
		_ = cache.Warmup(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.True(t, cache.WaitForWarmup(ctx))
	assert.True(t, cache.IsHealthy())
}

package swarm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetIsIdempotent(t *testing.T) {
	monitor := NewMonitor()
	cache := NewCache(monitor)
	payload := map[string]any{"id": "p1"}

	_, ok1 := cache.Get("analyst", payload)
	_, ok2 := cache.Get("analyst", payload)
	assert.False(t, ok1)
	assert.False(t, ok2)

	cache.Put("analyst", payload, "result")

	got1, ok1 := cache.Get("analyst", payload)
	got2, ok2 := cache.Get("analyst", payload)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, "result", got1)
	assert.Equal(t, got1, got2)
}

func TestCache_KeyIgnoresFieldOrder(t *testing.T) {
	cache := NewCache(NewMonitor())

	k1, err := cache.Key("analyst", map[string]any{"a": 1, "b": 2, "c": 3})
	require.NoError(t, err)
	k2, err := cache.Key("analyst", map[string]any{"c": 3, "b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestCache_KeyVariesBySpecialistAndPayload(t *testing.T) {
	cache := NewCache(NewMonitor())
	payload := map[string]any{"id": "p1"}

	k1, _ := cache.Key("analyst", payload)
	k2, _ := cache.Key("mapper", payload)
	k3, _ := cache.Key("analyst", map[string]any{"id": "p2"})
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestCache_KeyPreservesSequenceOrder(t *testing.T) {
	cache := NewCache(NewMonitor())

	k1, _ := cache.Key("analyst", []string{"a", "b"})
	k2, _ := cache.Key("analyst", []string{"b", "a"})
	assert.NotEqual(t, k1, k2)
}

func TestCache_HitMissAccounting(t *testing.T) {
	monitor := NewMonitor()
	cache := NewCache(monitor)
	payload := []int{1, 2, 3}

	cache.Get("analyst", payload)
	cache.Put("analyst", payload, "out")
	cache.Get("analyst", payload)
	cache.Get("analyst", payload)

	summary := monitor.Summary()
	assert.Equal(t, 2, summary.Cache.Hits)
	assert.Equal(t, 1, summary.Cache.Misses)
}

func TestCache_GetOrComputeSingleFlight(t *testing.T) {
	monitor := NewMonitor()
	cache := NewCache(monitor)
	payload := map[string]any{"id": "p1"}

	var computes atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (string, error) {
		computes.Add(1)
		<-release
		return "computed", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			text, _, err := cache.GetOrCompute(context.Background(), "analyst", payload, compute)
			assert.NoError(t, err)
			results[idx] = text
		}(i)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load())
	for _, r := range results {
		assert.Equal(t, "computed", r)
	}

	summary := monitor.Summary()
	assert.Equal(t, 1, summary.Cache.Misses)
	assert.Equal(t, callers-1, summary.Cache.Hits)
}

func TestCache_GetOrComputeDoesNotCacheFailures(t *testing.T) {
	cache := NewCache(NewMonitor())
	payload := "doc text"

	boom := errors.New("backend down")
	_, _, err := cache.GetOrCompute(context.Background(), "analyst", payload, func(context.Context) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	text, cached, err := cache.GetOrCompute(context.Background(), "analyst", payload, func(context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "recovered", text)
}

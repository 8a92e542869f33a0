package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	svc.Set(context.Background(), PastListingKey("u1"), []string{"s1"}, time.Minute)
	var dest []string
	assert.False(t, svc.Get(context.Background(), PastListingKey("u1"), &dest))
	assert.Empty(t, repo.values)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.InvalidatePastListings(context.Background())
}

func TestCacheServiceCapsTTL(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, 10*time.Minute, nil, true)
	key := PastListingKey("u1")

	svc.Set(context.Background(), key, []string{"s1"}, time.Hour)
	assert.Equal(t, 10*time.Minute, repo.ttls[key])

	svc.Set(context.Background(), key, []string{"s1"}, 30*time.Second)
	assert.Equal(t, 30*time.Second, repo.ttls[key])

	svc.Set(context.Background(), key, []string{"s1"}, 0)
	assert.Equal(t, 10*time.Minute, repo.ttls[key])
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	repo := newCacheRepoStub()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	key := PastListingKey("u1")

	var dest []string
	assert.False(t, svc.Get(context.Background(), key, &dest))
	svc.Set(context.Background(), key, []string{"s1", "s2"}, time.Minute)
	require.True(t, svc.Get(context.Background(), key, &dest))
	assert.Equal(t, []string{"s1", "s2"}, dest)

	assert.Equal(t, 1.0, counterValue(t, metrics, "past_listing_cache_hits_total", nil))
	assert.Equal(t, 1.0, counterValue(t, metrics, "past_listing_cache_misses_total", nil))
}

func TestCacheServiceInvalidatesPastListings(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	svc.Set(context.Background(), PastListingKey("u1"), []string{"s1"}, time.Minute)

	svc.InvalidatePastListings(context.Background())

	assert.Equal(t, []string{"sessions:past:*"}, repo.patterns)
	assert.Empty(t, repo.values)
}

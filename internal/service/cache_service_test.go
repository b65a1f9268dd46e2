package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-admin-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

type failingCacheRepository struct{}

func (failingCacheRepository) Get(context.Context, string, interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepository) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepository) DeleteByPattern(context.Context, string) error {
	return errors.New("redis down")
}

func TestCacheServiceStoresNameLists(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(repository.NewMemoryCacheRepository(time.Minute), metrics, 0, nil, true)
	ctx := context.Background()

	_, ok := svc.Names(ctx, staffList)
	assert.False(t, ok)

	svc.StoreNames(ctx, staffList, []string{"Dr Smith"})
	names, ok := svc.Names(ctx, staffList)
	require.True(t, ok)
	assert.Equal(t, []string{"Dr Smith"}, names)

	_, ok = svc.Names(ctx, roomList)
	assert.False(t, ok)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)

	require.NoError(t, svc.Purge(ctx))
	_, ok = svc.Names(ctx, staffList)
	assert.False(t, ok)
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(repository.NewMemoryCacheRepository(time.Minute), nil, 0, nil, false)
	ctx := context.Background()

	svc.StoreNames(ctx, staffList, []string{"x"})
	_, ok := svc.Names(ctx, staffList)
	assert.False(t, ok)

	var nilService *CacheService
	assert.False(t, nilService.Enabled())
	_, ok = nilService.Names(ctx, staffList)
	assert.False(t, ok)
	require.NoError(t, nilService.Purge(ctx))
}

func TestCacheServiceBackendFailures(t *testing.T) {
	svc := NewCacheService(failingCacheRepository{}, nil, 0, nil, true)
	ctx := context.Background()

	_, ok := svc.Names(ctx, staffList)
	assert.False(t, ok)
	svc.StoreNames(ctx, staffList, []string{"x"})

	err := svc.Purge(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackend))
}

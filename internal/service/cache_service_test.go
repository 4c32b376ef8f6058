package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
)

type memoryCacheRepo struct {
	values   map[string][]byte
	patterns []string
	getErr   error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	m.values = map[string][]byte{}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, NewMetricsService(), 0, nil, true)
	ctx := context.Background()

	var got []string
	hit, err := cache.Get(ctx, "routine:2024:grid", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "routine:2024:grid", []string{"a"}, 0))
	hit, err = cache.Get(ctx, "routine:2024:grid", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a"}, got)

	require.NoError(t, cache.InvalidateRoutine(ctx, "2024"))
	assert.Equal(t, []string{"routine:2024:*"}, repo.patterns)
}

func TestCacheServiceDisabledAndErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	disabled := NewCacheService(repo, nil, time.Minute, nil, false)
	assert.False(t, disabled.Enabled())
	require.NoError(t, disabled.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.values)

	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	var dest int
	hit, err := cache.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestRoutineGridKey(t *testing.T) {
	semester := 3
	assert.Equal(t, "routine:2024-2025:grid", RoutineGridKey("2024-2025", nil, "", ""))
	assert.Equal(t, "routine:2024-2025:grid:sem=3:sec=B:teacher=t-1", RoutineGridKey("2024-2025", &semester, "B", "t-1"))
}

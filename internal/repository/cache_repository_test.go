package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "routine:grid:2024", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "routine:grid:2024", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "routine:grid:*"))
}

//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garita/internal/access/cache"
	"garita/internal/domain"
	"garita/pkg/testutil/containers"
)

func TestEntryCacheAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.GetRedis(t)
	require.NoError(t, rc.FlushAll(ctx))

	c := cache.New(rc.Client, time.Minute, slog.Default())

	entryAt := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	projection := &domain.EntryProjection{
		ID:      42,
		EntryAt: &entryAt,
		Inside:  true,
		Contractor: &domain.ContractorSummary{
			ID: 7, FullName: "Carlos Jiménez", NationalID: "1-2345-6789",
		},
	}

	c.Put(ctx, projection)

	got, ok := c.Get(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, projection.ID, got.ID)
	require.NotNil(t, got.Contractor)
	assert.Equal(t, "Carlos Jiménez", got.Contractor.FullName)
	assert.True(t, got.EntryAt.Equal(entryAt))

	c.Invalidate(ctx, 42)
	_, ok = c.Get(ctx, 42)
	assert.False(t, ok)
}

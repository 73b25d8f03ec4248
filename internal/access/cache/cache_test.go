package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garita/internal/domain"
)

type fakeRedis struct {
	data    map[string]string
	getErr  error
	deleted []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	c := New(fake, time.Minute, slog.Default())

	p := &domain.EntryProjection{ID: 42, Inside: true}
	c.Put(context.Background(), p)

	got, ok := c.Get(context.Background(), 42)
	require.True(t, ok)
	assert.Equal(t, int64(42), got.ID)
	assert.True(t, got.Inside)
}

func TestCacheMiss(t *testing.T) {
	c := New(newFakeRedis(), time.Minute, slog.Default())

	got, ok := c.Get(context.Background(), 99)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCacheInvalidate(t *testing.T) {
	fake := newFakeRedis()
	c := New(fake, time.Minute, slog.Default())

	c.Put(context.Background(), &domain.EntryProjection{ID: 42})
	c.Invalidate(context.Background(), 42)

	_, ok := c.Get(context.Background(), 42)
	assert.False(t, ok)
	assert.Contains(t, fake.deleted, "garita:ingreso:42")
}

func TestCacheCorruptPayloadIsAMiss(t *testing.T) {
	fake := newFakeRedis()
	fake.data["garita:ingreso:42"] = "{not json"
	c := New(fake, time.Minute, slog.Default())

	_, ok := c.Get(context.Background(), 42)
	assert.False(t, ok)
}

func TestNilCacheIsInert(t *testing.T) {
	var c *EntryCache

	c.Put(context.Background(), &domain.EntryProjection{ID: 1})
	c.Invalidate(context.Background(), 1)
	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
}

func TestCachePayloadIsJSON(t *testing.T) {
	fake := newFakeRedis()
	c := New(fake, time.Minute, slog.Default())

	c.Put(context.Background(), &domain.EntryProjection{ID: 7, Notes: "sin novedad"})

	var decoded domain.EntryProjection
	require.NoError(t, json.Unmarshal([]byte(fake.data["garita:ingreso:7"]), &decoded))
	assert.Equal(t, "sin novedad", decoded.Notes)
}

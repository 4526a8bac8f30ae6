package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainfly/internal/domain"
)

// fakeRedis implements the subset of goredis.Cmdable the cache uses.
type fakeRedis struct {
	goredis.Cmdable
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.getErr != nil {
		return goredis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func TestTariffCache_RoundTrip(t *testing.T) {
	client := newFakeRedis()
	cache := NewTariffCache(client)
	ctx := context.Background()

	s := &domain.TariffStructure{
		ID:        uuid.New(),
		DiscomID:  uuid.New(),
		Category:  "industrial",
		BaseRate:  7.25,
		ValidFrom: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Source:    domain.TariffSourceDiscomAPI,
	}
	require.NoError(t, cache.Set(ctx, "tariff:k1", s, 10*time.Minute))
	assert.Equal(t, 10*time.Minute, client.ttls["tariff:k1"])

	got, err := cache.Get(ctx, "tariff:k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 7.25, got.BaseRate)
	assert.True(t, s.ValidFrom.Equal(got.ValidFrom))
}

func TestTariffCache_MissReturnsNil(t *testing.T) {
	cache := NewTariffCache(newFakeRedis())

	got, err := cache.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTariffCache_GetErrorWrapped(t *testing.T) {
	client := newFakeRedis()
	client.getErr = errors.New("connection refused")
	cache := NewTariffCache(client)

	_, err := cache.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tariffCache.Get k")
}

func TestTariffCache_CorruptPayload(t *testing.T) {
	client := newFakeRedis()
	client.data["k"] = "{not json"
	cache := NewTariffCache(client)

	_, err := cache.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

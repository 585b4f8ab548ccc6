package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essyessentials/storefront-backend/pkg/config"
)

// fakeRedis keeps strings and counters in maps and records expirations.
type fakeRedis struct {
	strings  map[string]string
	counters map[string]int64
	expiries map[string]time.Duration
	messages []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		strings:  map[string]string{},
		counters: map[string]int64{},
		expiries: map[string]time.Duration{},
	}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.strings[key] = fmt.Sprint(value)
	f.expiries[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.strings[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, taken := f.strings[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expiries[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.strings, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.messages = append(f.messages, fmt.Sprintf("%s=%v", channel, message))
	return redis.NewIntResult(1, nil)
}

func TestFixedWindowAllowCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := &Client{store: fake}

	var verdicts []bool
	for range 3 {
		ok, _, err := c.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		verdicts = append(verdicts, ok)
	}

	assert.Equal(t, []bool{true, true, false}, verdicts)
	assert.Equal(t, int64(3), fake.counters["sf:rate_limit:login:1.2.3.4"])
	assert.Equal(t, time.Minute, fake.expiries["sf:rate_limit:login:1.2.3.4"])
	assert.Len(t, fake.expiries, 1)
}

func TestSetNXOnlyFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	c := &Client{store: newFakeRedis()}
	key := c.IdempotencyKey("cart|POST|/api/v1/checkout", "k1")

	first, err := c.SetNX(ctx, key, "a", time.Hour)
	require.NoError(t, err)
	second, err := c.SetNX(ctx, key, "b", time.Hour)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestGetAfterDelIsNil(t *testing.T) {
	ctx := context.Background()
	c := &Client{store: newFakeRedis()}
	key := c.CartKey("tok-1")

	require.NoError(t, c.Set(ctx, key, `{"lines":[]}`, time.Hour))
	require.NoError(t, c.Del(ctx, key))

	_, err := c.Get(ctx, key)
	assert.True(t, IsNil(err))
	assert.False(t, IsNil(nil))
}

func TestPublishUsesChangesChannel(t *testing.T) {
	fake := newFakeRedis()
	c := &Client{store: fake}

	require.NoError(t, c.Publish(context.Background(), c.ChangesChannel(), "orders"))
	assert.Equal(t, []string{"sf:changes=orders"}, fake.messages)
}

func TestZeroClient(t *testing.T) {
	var c Client
	ctx := context.Background()

	assert.ErrorIs(t, c.Ping(ctx), errNotInitialized)
	assert.ErrorIs(t, c.Set(ctx, "k", "v", 0), errNotInitialized)
	_, err := c.Subscribe(ctx, "x")
	assert.ErrorIs(t, err, errNotInitialized)
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	var c Client
	cases := map[string]string{
		c.IdempotencyKey("scope", "id"): "sf:idempotency:scope:id",
		c.IdempotencyKey("scope", " "):  "sf:idempotency:scope",
		c.RateLimitKey("scope"):         "sf:rate_limit:scope",
		c.AccessSessionKey("abc"):       "sf:session:access:abc",
		c.CartKey("tok"):                "sf:cart:tok",
		c.ChangesChannel():              "sf:changes",
	}
	for got, want := range cases {
		assert.Equal(t, want, got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://:urlpass@localhost:6379/3",
		Password: "cfgpass",
		DB:       5,
		PoolSize: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "urlpass", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379", Password: "cfgpass", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cfgpass", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

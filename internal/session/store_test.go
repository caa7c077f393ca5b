package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

type fakeRedis struct {
	hashes  map[string]map[string]string
	expires map[string]time.Duration
	err     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{hashes: map[string]map[string]string{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			n++
		}
		delete(f.hashes, k)
	}
	return redis.NewIntResult(n, nil)
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := NewStore(rdb, "tt:session", time.Hour, zaptest.NewLogger(t))

	_, err := store.Load(ctx, "laptop")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, "laptop", domain.Session{Email: "ana@example.com", Provider: domain.ProviderGoogle}))
	assert.Equal(t, time.Hour, rdb.expires["tt:session:laptop"])

	sess, err := store.Load(ctx, "laptop")
	require.NoError(t, err)
	assert.Equal(t, &domain.Session{Email: "ana@example.com", Provider: domain.ProviderGoogle}, sess)

	_, err = store.Load(ctx, "desktop")
	assert.ErrorIs(t, err, domain.ErrNotFound, "profiles are independent")

	require.NoError(t, store.Clear(ctx, "laptop"))
	_, err = store.Load(ctx, "laptop")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, store.Clear(ctx, "laptop"))
}

func TestStore_DefaultProfileAndPrefix(t *testing.T) {
	rdb := newFakeRedis()
	store := NewStore(rdb, "", 0, zaptest.NewLogger(t))

	require.NoError(t, store.Save(context.Background(), "", domain.Session{Email: "a@b.c", Provider: domain.ProviderBasic}))
	assert.Contains(t, rdb.hashes, "ticket-tracker:session:default")
	assert.Empty(t, rdb.expires)
}

func TestStore_Validation(t *testing.T) {
	store := NewStore(newFakeRedis(), "p", 0, zaptest.NewLogger(t))

	err := store.Save(context.Background(), "x", domain.Session{Provider: domain.ProviderBasic})
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = store.Save(context.Background(), "x", domain.Session{Email: "a@b.c", Provider: "FACEBOOK"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_MalformedEntryIsNotResumable(t *testing.T) {
	rdb := newFakeRedis()
	rdb.hashes["p:x"] = map[string]string{fieldEmail: "a@b.c", fieldProvider: "TWITTER"}
	store := NewStore(rdb, "p", 0, zaptest.NewLogger(t))

	_, err := store.Load(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ClientErrors(t *testing.T) {
	boom := errors.New("connection refused")
	rdb := newFakeRedis()
	rdb.err = boom
	store := NewStore(rdb, "p", 0, zaptest.NewLogger(t))

	assert.ErrorIs(t, store.Save(context.Background(), "x", domain.Session{Email: "a@b.c", Provider: domain.ProviderBasic}), boom)
	_, err := store.Load(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Clear(context.Background(), "x"), boom)
}

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// fakeClient emulates SET NX and the compare-and-delete script.
type fakeClient struct {
	mu      sync.Mutex
	values  map[string]string
	ttl     time.Duration
	failSet error
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: make(map[string]string)}
}

func (f *fakeClient) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return goredis.NewBoolResult(false, f.failSet)
	}
	if _, ok := f.values[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	f.ttl = expiration
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *goredis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return goredis.NewCmdResult(int64(1), nil)
	}
	return goredis.NewCmdResult(int64(0), nil)
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	c := newFakeClient()
	l := New(c, "", 0)
	ctx := context.Background()

	release, err := l.TryLock(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Contains(t, c.values, DefaultKey)

	_, err = l.TryLock(ctx)
	assert.ErrorIs(t, err, driven.ErrLockHeld)

	require.NoError(t, release(ctx))
	assert.NotContains(t, c.values, DefaultKey)

	release2, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestLocker_ReleaseDoesNotStealForeignLock(t *testing.T) {
	c := newFakeClient()
	l := New(c, "k", time.Minute)
	ctx := context.Background()

	release, err := l.TryLock(ctx)
	require.NoError(t, err)

	// The lock expired and another process took it.
	c.values["k"] = "someone-else"

	require.NoError(t, release(ctx))
	assert.Equal(t, "someone-else", c.values["k"])
}

func TestLocker_SetError(t *testing.T) {
	c := newFakeClient()
	c.failSet = errors.New("connection refused")
	l := New(c, "k", time.Minute)

	_, err := l.TryLock(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, driven.ErrLockHeld))
}

func TestLocker_CloseWithoutDial(t *testing.T) {
	assert.NoError(t, New(newFakeClient(), "", 0).Close())
}

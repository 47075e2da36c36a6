package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newBlacklistWithClock() (*InMemoryTokenBlacklist, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	b := NewInMemoryTokenBlacklist()
	b.now = clock.now
	return b, clock
}

func TestInMemoryTokenBlacklist_AddToBlacklist(t *testing.T) {
	blacklist, clock := newBlacklistWithClock()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	clock.advance(2 * time.Hour)
	revoked, err = blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entries expire with the token")
}

func TestInMemoryTokenBlacklist_IgnoresExpiredTokens(t *testing.T) {
	blacklist, _ := newBlacklistWithClock()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "already-expired", 0))
	assert.Empty(t, blacklist.jtis)
}

func TestInMemoryTokenBlacklist_SweepsOnWrite(t *testing.T) {
	blacklist, clock := newBlacklistWithClock()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "short", time.Minute))
	clock.advance(2 * time.Minute)
	require.NoError(t, blacklist.AddToBlacklist(ctx, "long", time.Hour))

	assert.Len(t, blacklist.jtis, 1)
	assert.Contains(t, blacklist.jtis, "long")
}

func TestInMemoryTokenBlacklist_UserTokenInvalidation(t *testing.T) {
	blacklist, clock := newBlacklistWithClock()
	ctx := context.Background()
	issuedBefore := clock.t.Add(-time.Hour)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated)

	require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, "user-1", 24*time.Hour))

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated)

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", clock.t.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, invalidated, "tokens issued after the mark stay valid")

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated)

	clock.advance(25 * time.Hour)
	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalidated, "mark expires after its ttl")
}

func TestInMemoryTokenBlacklist_SameSecondReissue(t *testing.T) {
	blacklist, clock := newBlacklistWithClock()
	ctx := context.Background()
	clock.advance(100 * time.Millisecond)
	oldToken := clock.t.Add(-50 * time.Millisecond)

	require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, "user-1", time.Hour))

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", oldToken)
	require.NoError(t, err)
	assert.True(t, invalidated)

	invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", clock.t.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, invalidated, "a login right after a password change keeps its tokens")
}

func TestRedisTokenBlacklist_Keys(t *testing.T) {
	b := NewRedisTokenBlacklist(nil)
	assert.Equal(t, "shop:auth:revoked:jti:abc", b.jtiKey("abc"))
	assert.Equal(t, "shop:auth:revoked:user:u1", b.userKey("u1"))
}

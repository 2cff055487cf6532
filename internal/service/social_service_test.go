package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/testutil"
)

func TestToggleFollow_IsInvolution(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a, ap := testutil.SeedUser(t, env.db, "alice")
	_, bp := testutil.SeedUser(t, env.db, "bob")

	st, err := env.social.ToggleFollow(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, FollowState{Following: true, Count: 1}, st)

	ok, err := env.repos.Follows.Exists(ctx, ap.ID, bp.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	fans, err := env.repos.Fans.Count(ctx, bp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fans)

	st, err = env.social.ToggleFollow(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, FollowState{Following: false, Count: 0}, st)

	ok, err = env.repos.Follows.Exists(ctx, ap.ID, bp.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	fans, err = env.repos.Fans.Count(ctx, bp.ID)
	require.NoError(t, err)
	assert.Zero(t, fans)
}

func TestToggleFollow_CountsOtherFollowers(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a, _ := testutil.SeedUser(t, env.db, "alice")
	b, _ := testutil.SeedUser(t, env.db, "bob")
	testutil.SeedUser(t, env.db, "carol")

	_, err := env.social.ToggleFollow(ctx, a.ID, "carol")
	require.NoError(t, err)
	st, err := env.social.ToggleFollow(ctx, b.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, FollowState{Following: true, Count: 2}, st)
}

func TestToggleFollow_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a, _ := testutil.SeedUser(t, env.db, "alice")

	_, err := env.social.ToggleFollow(ctx, a.ID, "alice")
	assert.ErrorIs(t, err, ErrFollowSelf)

	_, err = env.social.ToggleFollow(ctx, a.ID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLike_UnknownPost(t *testing.T) {
	env := newTestEnv(t, nil)
	a, _ := testutil.SeedUser(t, env.db, "alice")

	_, err := env.social.ToggleLike(context.Background(), a.ID, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLike_IndependentUsers(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a, _ := testutil.SeedUser(t, env.db, "alice")
	b, _ := testutil.SeedUser(t, env.db, "bob")
	p, err := env.feed.CreatePost(ctx, a.ID, PostInput{Content: "post"}, nil)
	require.NoError(t, err)

	_, err = env.social.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	st, err := env.social.ToggleLike(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: true, Count: 2}, st)

	st, err = env.social.ToggleLike(ctx, a.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, Count: 1}, st)
}

func TestToggleFollow_InvalidatesStatsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	stats := cache.NewStatsCache(client, time.Minute)

	env := newTestEnv(t, stats)
	ctx := context.Background()
	a, _ := testutil.SeedUser(t, env.db, "alice")
	testutil.SeedUser(t, env.db, "bob")

	view, err := env.profile.GetProfile(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.Zero(t, view.Followers)
	_, cached := stats.Get(ctx, view.Profile.ID)
	require.True(t, cached)

	_, err = env.social.ToggleFollow(ctx, a.ID, "bob")
	require.NoError(t, err)
	_, cached = stats.Get(ctx, view.Profile.ID)
	assert.False(t, cached)

	view, err = env.profile.GetProfile(ctx, a.ID, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.Followers)
	assert.True(t, view.IsFollowing)
}

package service

import (
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/redis"
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	assert.ErrorIs(t, f.follows.Follow(ctx, alice.ID, alice.ID), ErrUserFollowSelf)
	assert.ErrorIs(t, f.follows.Follow(ctx, alice.ID, 9999), ErrUserNotFound)

	require.NoError(t, f.follows.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.follows.Follow(ctx, alice.ID, bob.ID), ErrUserFollowExist)

	require.NoError(t, f.follows.Unfollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.follows.Unfollow(ctx, alice.ID, bob.ID), ErrActionNotFound)
}

func TestBlock_BreaksFollowsAndPreventsRefollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	require.NoError(t, f.follows.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, f.follows.Follow(ctx, bob.ID, alice.ID))

	require.NoError(t, f.follows.Block(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.follows.Block(ctx, alice.ID, bob.ID), ErrActionDuplicate)
	assert.ErrorIs(t, f.follows.Block(ctx, alice.ID, alice.ID), ErrUserBlockSelf)

	ids, err := f.follows.GetFollowingIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, f.follows.Follow(ctx, bob.ID, alice.ID), ErrUserFollowBlocked)
	assert.ErrorIs(t, f.follows.Follow(ctx, alice.ID, bob.ID), ErrUserFollowBlocked)

	blocked, err := f.follows.GetBlockedUserIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{bob.ID}, blocked)

	require.NoError(t, f.follows.Unblock(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.follows.Unblock(ctx, alice.ID, bob.ID), ErrActionNotFound)
	assert.NoError(t, f.follows.Follow(ctx, bob.ID, alice.ID))
}

func TestGetFollowingIDs_CachesEmptySet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	key := consts.UserFollowingKey + strconv.FormatUint(alice.ID, 10)

	ids, err := f.follows.GetFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.True(t, f.mr.Exists(key))

	bob := seedUser(t, f.db, "bob")
	require.NoError(t, f.follows.Follow(ctx, alice.ID, bob.ID))
	assert.False(t, f.mr.Exists(key))

	ids, err = f.follows.GetFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{bob.ID}, ids)

	ids, err = f.follows.GetFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{bob.ID}, ids)
}

func TestCacheFollowingIDs_DropsWriteRacingEviction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	key := consts.UserFollowingKey + strconv.FormatUint(alice.ID, 10)
	svc := f.follows.(*UserFollowServiceImpl)

	// 读库时尚未关注，回写前关注操作已失效缓存
	stale, err := redis.GetValue(ctx, consts.UserFollowingVer+strconv.FormatUint(alice.ID, 10))
	require.NoError(t, err)
	require.NoError(t, f.follows.Follow(ctx, alice.ID, bob.ID))
	svc.cacheFollowingIDs(ctx, alice.ID, stale, nil)
	assert.False(t, f.mr.Exists(key))

	ids, err := f.follows.GetFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{bob.ID}, ids)
	assert.True(t, f.mr.Exists(key))
}

func TestFollowLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	carol := seedUser(t, f.db, "carol")

	require.NoError(t, f.follows.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, f.follows.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, f.follows.Follow(ctx, alice.ID, carol.ID))

	followers, err := f.follows.GetFollowers(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers.TotalCount)
	names := []string{followers.Items[0].Username, followers.Items[1].Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)

	following, err := f.follows.GetFollowing(ctx, alice.ID, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following.TotalCount)
	require.Len(t, following.Items, 1)
	assert.Equal(t, carol.ID, following.Items[0].UserID)
	assert.Equal(t, "carol", following.Items[0].Username)

	beyond, err := f.follows.GetFollowers(ctx, alice.ID, math.MaxInt/5, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.EqualValues(t, 2, beyond.TotalCount)
}

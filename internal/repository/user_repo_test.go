package repository

import (
	"Snapfeed/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	user := &model.User{Email: "a@b.c", Username: "alpha", PasswordHash: "h"}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.Equal(t, model.UserStatusActive, user.Status)

	dup := &model.User{Email: "other@b.c", Username: "alpha", PasswordHash: "h"}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrDuplicate)

	byName, err := repo.GetUserByUsername(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetUserByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.GetUserById(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_DeleteUserClearsGraph(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepo(db)
	follows := NewUserFollowRepo(db)
	ctx := context.Background()
	a := seedUser(t, db, "gwen")
	b := seedUser(t, db, "hugo")

	require.NoError(t, follows.CreateUserFollow(ctx, &model.MapperUserFollow{FollowerID: a.ID, FolloweeID: b.ID}))
	require.NoError(t, follows.CreateUserFollow(ctx, &model.MapperUserFollow{FollowerID: b.ID, FolloweeID: a.ID}))

	withFollowing, err := users.GetUserWithFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID}, withFollowing.FollowingIDs)

	require.NoError(t, users.DeleteUser(ctx, a.ID))
	got := reloadUser(t, db, a.ID)
	assert.Equal(t, model.UserStatusDeleted, got.Status)
	assert.NotEqual(t, "gwen", got.Username)

	ids, err := follows.GetFollowingIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, users.DeleteUser(ctx, 999), ErrUserNotFound)
}

func TestUserFollowRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserFollowRepo(db)
	ctx := context.Background()
	a := seedUser(t, db, "iris")
	b := seedUser(t, db, "jake")
	c := seedUser(t, db, "kim")

	require.NoError(t, repo.CreateUserFollow(ctx, &model.MapperUserFollow{FollowerID: a.ID, FolloweeID: b.ID}))
	require.NoError(t, repo.CreateUserFollow(ctx, &model.MapperUserFollow{FollowerID: a.ID, FolloweeID: c.ID}))
	require.NoError(t, repo.CreateUserFollow(ctx, &model.MapperUserFollow{FollowerID: a.ID, FolloweeID: c.ID}))

	count, err := repo.GetUserFollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	followers, err := repo.GetUserFollowerCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	rel, err := repo.GetUserFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, rel)

	n, err := repo.DeleteUserFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rel, err = repo.GetUserFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, rel)

	ids, err := repo.GetFollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{c.ID}, ids)
}

func TestUserBlockRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserBlockRepo(db)
	follows := NewUserFollowRepo(db)
	ctx := context.Background()
	a := seedUser(t, db, "lara")
	b := seedUser(t, db, "milo")

	require.NoError(t, follows.CreateUserFollow(ctx, &model.MapperUserFollow{FollowerID: b.ID, FolloweeID: a.ID}))
	require.NoError(t, repo.Block(ctx, a.ID, b.ID))
	require.NoError(t, repo.Block(ctx, a.ID, b.ID))

	blocked, err := repo.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	ids, err := repo.GetBlockedUserIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID}, ids)

	rel, err := follows.GetUserFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, rel)

	n, err := repo.Unblock(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

package repository

import (
	"Snapfeed/internal/model"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepo_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	feeds := NewFeedRepo(db)
	repo := NewCommentRepo(db)
	ctx := context.Background()
	author := seedUser(t, db, "anna")
	guest := seedUser(t, db, "ben")
	feed := createFeed(t, feeds, author.ID)

	first := &model.Comment{FeedID: feed.ID, UserID: guest.ID, Content: "first"}
	second := &model.Comment{FeedID: feed.ID, UserID: guest.ID, Content: "second"}
	require.NoError(t, repo.CreateComment(ctx, first))
	require.NoError(t, repo.CreateComment(ctx, second))
	assert.Equal(t, 2, reloadFeed(t, db, feed.ID).CommentCount)

	reply := &model.CommentReply{CommentID: first.ID, UserID: author.ID, Content: "thanks"}
	require.NoError(t, repo.CreateReply(ctx, reply))

	got, err := repo.GetComment(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReplyCount)

	replies, err := repo.ListReplies(ctx, first.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, replies.Items, 1)
	assert.Equal(t, "thanks", replies.Items[0].Content)

	beyond, err := repo.ListComments(ctx, feed.ID, math.MaxInt/5, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(2), beyond.TotalCount)

	page, err := repo.ListComments(ctx, feed.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, second.ID, page.Items[0].ID)

	require.NoError(t, repo.DeleteComment(ctx, first.ID))
	assert.Equal(t, 1, reloadFeed(t, db, feed.ID).CommentCount)
	assert.ErrorIs(t, repo.DeleteComment(ctx, first.ID), ErrCommentNotFound)
	assert.ErrorIs(t, repo.CreateReply(ctx, &model.CommentReply{CommentID: first.ID, UserID: author.ID, Content: "late"}), ErrCommentNotFound)

	page, err = repo.ListComments(ctx, feed.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestCommentRepo_DeletedFeed(t *testing.T) {
	db := setupTestDB(t)
	feeds := NewFeedRepo(db)
	repo := NewCommentRepo(db)
	ctx := context.Background()
	author := seedUser(t, db, "cleo")
	feed := createFeed(t, feeds, author.ID)
	require.NoError(t, feeds.SoftDelete(ctx, feed.ID))

	err := repo.CreateComment(ctx, &model.Comment{FeedID: feed.ID, UserID: author.ID, Content: "x"})
	assert.ErrorIs(t, err, ErrFeedNotFound)
}

func TestCounterRepo_Repair(t *testing.T) {
	db := setupTestDB(t)
	feeds := NewFeedRepo(db)
	repo := NewCounterRepo(db)
	ctx := context.Background()
	author := seedUser(t, db, "dora")
	fan := seedUser(t, db, "eli")
	feed := createFeed(t, feeds, author.ID)
	require.NoError(t, feeds.Like(ctx, fan.ID, feed.ID))

	require.NoError(t, db.Model(&model.Feed{}).Where("id = ?", feed.ID).
		UpdateColumns(map[string]any{"like_count": 7, "comment_count": 3}).Error)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", author.ID).
		UpdateColumn("feed_count", 5).Error)

	n, err := repo.RepairLikeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.RepairCommentCounts(ctx)
	require.NoError(t, err)
	_, err = repo.RepairFeedCounts(ctx)
	require.NoError(t, err)
	_, err = repo.RepairReplyCounts(ctx)
	require.NoError(t, err)

	got := reloadFeed(t, db, feed.ID)
	assert.Equal(t, 1, got.LikeCount)
	assert.Equal(t, 0, got.CommentCount)
	assert.Equal(t, 1, reloadUser(t, db, author.ID).FeedCount)
	assert.Equal(t, 0, reloadUser(t, db, fan.ID).FeedCount)

	n, err = repo.RepairLikeCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

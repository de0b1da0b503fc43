package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/consts"
	"Snapfeed/internal/pkg/redis"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) publish(t *testing.T, userID uint64, req *dto.CreateFeedDTO) *dto.FeedDTO {
	t.Helper()
	if len(req.Images) == 0 {
		req.Images = []*dto.FeedImageReq{{ImageURL: f.upload(t, userID, 4, 3)}}
	}
	feed, err := f.feeds.CreateFeed(context.Background(), userID, req)
	require.NoError(t, err)
	return feed
}

func TestCreateFeed_PromotesUploadsAndHydrates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")

	second := f.upload(t, alice.ID, 8, 6)
	first := f.upload(t, alice.ID, 4, 3)

	feed, err := f.feeds.CreateFeed(ctx, alice.ID, &dto.CreateFeedDTO{
		Description: "  morning walk ",
		Images: []*dto.FeedImageReq{
			{ImageURL: second, SortOrder: 2},
			{ImageURL: first, SortOrder: 1},
		},
		TagNames: []string{"#walk", "sun", "walk"},
	})
	require.NoError(t, err)

	assert.Equal(t, "morning walk", feed.Description)
	assert.Equal(t, model.FeedStatusActive, feed.Status)
	assert.ElementsMatch(t, []string{"walk", "sun"}, feed.Tags)
	require.Len(t, feed.Images, 2)
	assert.Equal(t, "https://cdn.test/main/"+first, feed.Images[0].ImageURL)
	assert.Equal(t, 4, feed.Images[0].Width)
	assert.Equal(t, 3, feed.Images[0].Height)
	assert.Equal(t, 8, feed.Images[1].Width)
	require.NotNil(t, feed.LikeCount)
	assert.Equal(t, 0, *feed.LikeCount)
	assert.Equal(t, model.YnN, feed.LikedYn)

	assert.True(t, f.storage.has(f.storage.main, first))
	assert.False(t, f.storage.has(f.storage.temp, first))
	pending, err := redis.HGetAll(ctx, consts.MediaTempKey)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateFeed_RejectsForeignOrUnknownImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	bobs := f.upload(t, bob.ID, 2, 2)
	_, err := f.feeds.CreateFeed(ctx, alice.ID, &dto.CreateFeedDTO{
		Images: []*dto.FeedImageReq{{ImageURL: bobs}},
	})
	assert.ErrorIs(t, err, UnauthorizedError)

	_, err = f.feeds.CreateFeed(ctx, alice.ID, &dto.CreateFeedDTO{
		Images: []*dto.FeedImageReq{{ImageURL: "feeds/1/missing.png"}},
	})
	assert.ErrorIs(t, err, ErrFileNotExist)

	own := f.upload(t, alice.ID, 2, 2)
	_, err = f.feeds.CreateFeed(ctx, alice.ID, &dto.CreateFeedDTO{
		Images: []*dto.FeedImageReq{{ImageURL: own}, {ImageURL: own}},
	})
	assert.ErrorIs(t, err, ErrParamInvalid)

	// 未发布成功的上传仍留在临时区
	assert.True(t, f.storage.has(f.storage.temp, own))
	assert.True(t, f.storage.has(f.storage.temp, bobs))
}

func TestCreateFeed_TooManyTags(t *testing.T) {
	f := newFixture(t)
	alice := seedUser(t, f.db, "alice")
	img := f.upload(t, alice.ID, 2, 2)

	_, err := f.feeds.CreateFeed(context.Background(), alice.ID, &dto.CreateFeedDTO{
		Images:   []*dto.FeedImageReq{{ImageURL: img}},
		TagNames: []string{"a", "b", "c", "d", "e", "f"},
	})
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestGetFeed_VisibilityRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	feed := f.publish(t, alice.ID, &dto.CreateFeedDTO{ShowLikeCountYn: model.YnN})

	got, err := f.feeds.GetFeed(ctx, bob.ID, feed.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LikeCount)

	got, err = f.feeds.GetFeed(ctx, alice.ID, feed.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LikeCount)

	require.NoError(t, f.feeds.UpdateStatus(ctx, alice.ID, feed.ID, model.FeedStatusHidden))
	_, err = f.feeds.GetFeed(ctx, bob.ID, feed.ID)
	assert.ErrorIs(t, err, ErrFeedNotFound)
	_, err = f.feeds.GetFeed(ctx, 0, feed.ID)
	assert.ErrorIs(t, err, ErrFeedNotFound)
	_, err = f.feeds.GetFeed(ctx, alice.ID, feed.ID)
	assert.NoError(t, err)

	require.NoError(t, f.feeds.DeleteFeed(ctx, alice.ID, feed.ID))
	_, err = f.feeds.GetFeed(ctx, alice.ID, feed.ID)
	assert.ErrorIs(t, err, ErrFeedNotFound)

	_, err = f.feeds.GetFeed(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, ErrFeedNotFound)
}

func TestGetFeed_UndisplayedOnlyForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	feed := f.publish(t, alice.ID, &dto.CreateFeedDTO{})
	require.NoError(t, f.feeds.UpdateDisplay(ctx, alice.ID, feed.ID, model.YnN))

	_, err := f.feeds.GetFeed(ctx, bob.ID, feed.ID)
	assert.ErrorIs(t, err, ErrFeedNotFound)
	assert.ErrorIs(t, f.feeds.Like(ctx, bob.ID, feed.ID), ErrFeedNotFound)
	assert.ErrorIs(t, f.feeds.Bookmark(ctx, bob.ID, feed.ID), ErrFeedNotFound)

	got, err := f.feeds.GetFeed(ctx, alice.ID, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, feed.ID, got.ID)
	assert.NoError(t, f.feeds.Like(ctx, alice.ID, feed.ID))
}

func TestFeedWrites_RequireOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	feed := f.publish(t, alice.ID, &dto.CreateFeedDTO{})

	_, err := f.feeds.UpdateFeed(ctx, bob.ID, feed.ID, &dto.UpdateFeedDTO{Description: "mine"})
	assert.ErrorIs(t, err, UnauthorizedError)
	assert.ErrorIs(t, f.feeds.UpdateStatus(ctx, bob.ID, feed.ID, model.FeedStatusHidden), UnauthorizedError)
	assert.ErrorIs(t, f.feeds.UpdateDisplay(ctx, bob.ID, feed.ID, model.YnN), UnauthorizedError)
	assert.ErrorIs(t, f.feeds.UpdateShowLikeCount(ctx, bob.ID, feed.ID, model.YnN), UnauthorizedError)
	assert.ErrorIs(t, f.feeds.DeleteFeed(ctx, bob.ID, feed.ID), UnauthorizedError)
	assert.ErrorIs(t, f.feeds.HardDeleteFeed(ctx, bob.ID, feed.ID), UnauthorizedError)

	assert.ErrorIs(t, f.feeds.UpdateStatus(ctx, alice.ID, feed.ID, "ARCHIVED"), ErrParamInvalid)
	assert.ErrorIs(t, f.feeds.UpdateDisplay(ctx, alice.ID, feed.ID, "X"), ErrParamInvalid)

	updated, err := f.feeds.UpdateFeed(ctx, alice.ID, feed.ID, &dto.UpdateFeedDTO{
		Description: "edited",
		TagNames:    []string{"x", "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Description)
	assert.ElementsMatch(t, []string{"x", "y"}, updated.Tags)
}

func TestHardDeleteFeed_RemovesObjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	img := f.upload(t, alice.ID, 2, 2)
	feed := f.publish(t, alice.ID, &dto.CreateFeedDTO{Images: []*dto.FeedImageReq{{ImageURL: img}}})
	require.True(t, f.storage.has(f.storage.main, img))

	require.NoError(t, f.feeds.HardDeleteFeed(ctx, alice.ID, feed.ID))
	assert.False(t, f.storage.has(f.storage.main, img))

	_, err := f.feeds.GetFeed(ctx, alice.ID, feed.ID)
	assert.ErrorIs(t, err, ErrFeedNotFound)
}

func TestGetAllFeeds_TagAndBlockFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	carol := seedUser(t, f.db, "carol")

	f.publish(t, alice.ID, &dto.CreateFeedDTO{TagNames: []string{"cat"}})
	f.publish(t, bob.ID, &dto.CreateFeedDTO{TagNames: []string{"cat"}})
	f.publish(t, bob.ID, &dto.CreateFeedDTO{TagNames: []string{"dog"}})

	all, err := f.feeds.GetAllFeeds(ctx, 0, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalCount)

	cats, err := f.feeds.GetAllFeeds(ctx, 0, "#cat", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cats.TotalCount)

	none, err := f.feeds.GetAllFeeds(ctx, 0, "unknown", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, none.TotalCount)
	assert.NotNil(t, none.Items)

	require.NoError(t, f.follows.Block(ctx, carol.ID, bob.ID))
	visible, err := f.feeds.GetAllFeeds(ctx, carol.ID, "", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, visible.TotalCount)
	assert.Equal(t, alice.ID, visible.Items[0].UserID)
	assert.Equal(t, model.YnN, visible.Items[0].LikedYn)
}

func TestGetFollowingFeeds_UsesFollowGraph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	carol := seedUser(t, f.db, "carol")

	f.publish(t, alice.ID, &dto.CreateFeedDTO{})
	f.publish(t, bob.ID, &dto.CreateFeedDTO{})
	f.publish(t, carol.ID, &dto.CreateFeedDTO{})

	page, err := f.feeds.GetFollowingFeeds(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)

	require.NoError(t, f.follows.Follow(ctx, alice.ID, bob.ID))
	page, err = f.feeds.GetFollowingFeeds(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	require.NoError(t, f.follows.Unfollow(ctx, alice.ID, bob.ID))
	page, err = f.feeds.GetFollowingFeeds(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
}

func TestGetFeedsByUser_StatusOnlyForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")

	f.publish(t, alice.ID, &dto.CreateFeedDTO{})
	hidden := f.publish(t, alice.ID, &dto.CreateFeedDTO{})
	require.NoError(t, f.feeds.UpdateStatus(ctx, alice.ID, hidden.ID, model.FeedStatusHidden))

	own, err := f.feeds.GetFeedsByUser(ctx, alice.ID, alice.ID, model.FeedStatusHidden, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, own.TotalCount)
	assert.Equal(t, hidden.ID, own.Items[0].ID)

	other, err := f.feeds.GetFeedsByUser(ctx, bob.ID, alice.ID, model.FeedStatusHidden, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, other.TotalCount)
	assert.NotEqual(t, hidden.ID, other.Items[0].ID)

	_, err = f.feeds.GetFeedsByUser(ctx, bob.ID, 9999, "", 1, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLikeAndBookmark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	bob := seedUser(t, f.db, "bob")
	feed := f.publish(t, alice.ID, &dto.CreateFeedDTO{})

	require.NoError(t, f.feeds.Like(ctx, bob.ID, feed.ID))
	assert.ErrorIs(t, f.feeds.Like(ctx, bob.ID, feed.ID), ErrActionDuplicate)
	require.NoError(t, f.feeds.Bookmark(ctx, bob.ID, feed.ID))

	got, err := f.feeds.GetFeed(ctx, bob.ID, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.LikeCount)
	assert.Equal(t, model.YnY, got.LikedYn)
	assert.Equal(t, model.YnY, got.BookmarkedYn)

	marks, err := f.feeds.GetBookmarkedFeeds(ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marks.TotalCount)

	require.NoError(t, f.feeds.Unlike(ctx, bob.ID, feed.ID))
	assert.ErrorIs(t, f.feeds.Unlike(ctx, bob.ID, feed.ID), ErrActionNotFound)
	require.NoError(t, f.feeds.Unbookmark(ctx, bob.ID, feed.ID))

	require.NoError(t, f.feeds.UpdateStatus(ctx, alice.ID, feed.ID, model.FeedStatusHidden))
	assert.ErrorIs(t, f.feeds.Like(ctx, bob.ID, feed.ID), ErrFeedNotFound)
	assert.NoError(t, f.feeds.Like(ctx, alice.ID, feed.ID))
}

func TestSearchFeeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")
	first := f.publish(t, alice.ID, &dto.CreateFeedDTO{Description: "red fox"})
	second := f.publish(t, alice.ID, &dto.CreateFeedDTO{Description: "fox den"})

	f.searcher.ids = []uint64{second.ID, 424242, first.ID}
	f.searcher.total = 3
	res, err := f.feeds.SearchFeeds(ctx, 0, "fox", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, second.ID, res.Items[0].ID)
	assert.Equal(t, first.ID, res.Items[1].ID)
	assert.EqualValues(t, 3, res.TotalCount)

	_, err = f.feeds.SearchFeeds(ctx, 0, "   ", 1, 10)
	assert.ErrorIs(t, err, ErrParamInvalid)

	f.searcher.err = errors.New("es down")
	_, err = f.feeds.SearchFeeds(ctx, 0, "fox", 1, 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

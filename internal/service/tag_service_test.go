package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopularTags_FallbackAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := seedUser(t, f.db, "alice")

	f.publish(t, alice.ID, &dto.CreateFeedDTO{TagNames: []string{"go", "db"}})
	f.publish(t, alice.ID, &dto.CreateFeedDTO{TagNames: []string{"go"}})

	tags, err := f.tags.GetPopularTags(ctx, 5)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].TagName)
	assert.EqualValues(t, 2, tags[0].UseCount)
	assert.True(t, f.mr.Exists(consts.PopularTagsKey))

	// 缓存命中时不受数据库变化影响，刷新后生效
	f.publish(t, alice.ID, &dto.CreateFeedDTO{TagNames: []string{"db", "new"}})
	f.publish(t, alice.ID, &dto.CreateFeedDTO{TagNames: []string{"db"}})
	tags, err = f.tags.GetPopularTags(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "go", tags[0].TagName)

	require.NoError(t, f.tags.RefreshPopularTags(ctx))
	tags, err = f.tags.GetPopularTags(ctx, 0)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "db", tags[0].TagName)
	assert.EqualValues(t, 3, tags[0].UseCount)
}

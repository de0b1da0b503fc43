package repository

import (
	"Snapfeed/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepo_GetOrCreateTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreateTags(ctx, []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := repo.GetOrCreateTags(ctx, []string{"b", "c"})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[1].ID, second[0].ID)

	var total int64
	require.NoError(t, db.Model(&model.Tag{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)

	_, err = repo.GetTagByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestTagRepo_GetPopularTags(t *testing.T) {
	db := setupTestDB(t)
	feeds := NewFeedRepo(db)
	repo := NewTagRepository(db)
	ctx := context.Background()
	author := seedUser(t, db, "yuri")

	createFeed(t, feeds, author.ID, "go", "db")
	createFeed(t, feeds, author.ID, "go")
	createFeed(t, feeds, author.ID, "go", "web")
	gone := createFeed(t, feeds, author.ID, "web")
	require.NoError(t, feeds.SoftDelete(ctx, gone.ID))

	top, err := repo.GetPopularTags(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "go", top[0].TagName)
	assert.Equal(t, int64(3), top[0].UseCount)
	assert.Equal(t, "db", top[1].TagName)
	assert.Equal(t, int64(1), top[1].UseCount)
}

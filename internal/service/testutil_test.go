package service

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/redis"
	"Snapfeed/internal/repository"
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/disintegration/imaging"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{
		Addr:                     mr.Addr(),
		MaintNotificationsConfig: &maintnotifications.Config{Mode: maintnotifications.ModeDisabled},
	})
	redis.SetClient(client)
	t.Cleanup(func() { _ = client.Close() })
	return mr
}

func seedUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		Username:     name,
		PasswordHash: "x",
		Status:       model.UserStatusActive,
		Gender:       model.GenderUnknown,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// memStorage 内存对象存储
type memStorage struct {
	mu   sync.Mutex
	temp map[string][]byte
	main map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{temp: map[string][]byte{}, main: map[string][]byte{}}
}

func (s *memStorage) UploadTemp(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temp[objectName] = data
	return nil
}

func (s *memStorage) Promote(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.temp[objectName]
	if !ok {
		return fmt.Errorf("no such temp object %s", objectName)
	}
	s.main[objectName] = data
	delete(s.temp, objectName)
	return nil
}

func (s *memStorage) RemoveTemp(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.temp, objectName)
	return nil
}

func (s *memStorage) Remove(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.main, objectName)
	return nil
}

func (s *memStorage) PublicURL(objectName string) string {
	return "https://cdn.test/main/" + objectName
}

func (s *memStorage) has(bucket map[string][]byte, objectName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := bucket[objectName]
	return ok
}

// stubSearcher 按预设顺序返回命中的 id
type stubSearcher struct {
	ids   []uint64
	total int64
	err   error
}

func (s *stubSearcher) SearchFeedIDs(_ context.Context, _ string, _, _ int) ([]uint64, int64, error) {
	return s.ids, s.total, s.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

// fixture 基于 sqlite 与 miniredis 组装的完整服务层
type fixture struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	storage  *memStorage
	searcher *stubSearcher

	users    UserService
	follows  UserFollowService
	media    MediaService
	feeds    FeedService
	comments CommentService
	tags     TagService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:       setupTestDB(t),
		mr:       setupRedis(t),
		storage:  newMemStorage(),
		searcher: &stubSearcher{},
	}

	userRepo := repository.NewUserRepo(f.db)
	feedRepo := repository.NewFeedRepo(f.db)
	tagRepo := repository.NewTagRepository(f.db)

	f.follows = NewUserFollowService(userRepo, repository.NewUserFollowRepo(f.db), repository.NewUserBlockRepo(f.db))
	f.users = NewUserService(userRepo, f.follows)
	f.media = NewMediaService(f.storage, 1<<20, 24)
	f.feeds = NewFeedService(feedRepo, tagRepo, userRepo, f.follows, f.media, f.searcher, config.FeedConfig{MaxImages: 3, MaxTags: 5})
	f.comments = NewCommentService(repository.NewCommentRepo(f.db), feedRepo, f.users)
	f.tags = NewTagService(tagRepo, 10)
	return f
}

func (f *fixture) upload(t *testing.T, userID uint64, w, h int) string {
	t.Helper()
	data := pngBytes(t, w, h)
	res, err := f.media.Upload(context.Background(), userID, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return res.ObjectName
}

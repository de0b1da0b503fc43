package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultSysBoxCollection = "sys_box"

	fieldID         = "_id"
	fieldReceiverID = "receiver_id"
	fieldIsRead     = "is_read"
	fieldCreatedAt  = "created_at"
	fieldDedupKey   = "dedup_key"
)

type SysBoxRepo interface {
	CreateNotification(ctx context.Context, msg *SysBoxModel) error
	GetNotificationList(ctx context.Context, userID uint64, limit, offset int64) ([]*SysBoxModel, error)
	MarkAsRead(ctx context.Context, userID uint64, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID uint64) (int64, error)
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*SysBoxModel, error)
	EnsureIndexes(ctx context.Context) error
}

type sysBoxRepoImpl struct {
	col       *mongo.Collection
	retention time.Duration
}

// NewSysBoxRepo retention 大于 0 时通知到期后由 TTL 索引清理
func NewSysBoxRepo(db *mongo.Database, collection string, retention time.Duration) SysBoxRepo {
	if collection == "" {
		collection = DefaultSysBoxCollection
	}
	return &sysBoxRepoImpl{col: db.Collection(collection), retention: retention}
}

// EnsureIndexes 接收者时间线、未读计数、去重唯一索引与过期清理
func (s *sysBoxRepoImpl) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldReceiverID, Value: 1}, {Key: fieldCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: fieldReceiverID, Value: 1}, {Key: fieldIsRead, Value: 1}}},
		{
			Keys: bson.D{{Key: fieldDedupKey, Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{fieldDedupKey: bson.M{"$exists": true}}),
		},
	}
	if s.retention > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: fieldCreatedAt, Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(s.retention / time.Second)),
		})
	}
	_, err := s.col.Indexes().CreateMany(ctx, models)
	return err
}

// CreateNotification dedup_key 冲突说明同一事件已投递过
func (s *sysBoxRepoImpl) CreateNotification(ctx context.Context, msg *SysBoxModel) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.col.InsertOne(ctx, msg)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *sysBoxRepoImpl) GetNotificationList(ctx context.Context, userID uint64, limit, offset int64) ([]*SysBoxModel, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, bson.M{fieldReceiverID: userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*SysBoxModel, 0, limit)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkAsRead 过滤条件带上接收者，别人的通知匹配不到
func (s *sysBoxRepoImpl) MarkAsRead(ctx context.Context, userID uint64, id primitive.ObjectID) error {
	result, err := s.col.UpdateOne(ctx,
		bson.M{fieldID: id, fieldReceiverID: userID},
		bson.M{"$set": bson.M{fieldIsRead: true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllAsRead 返回本次被标记的条数
func (s *sysBoxRepoImpl) MarkAllAsRead(ctx context.Context, userID uint64) (int64, error) {
	result, err := s.col.UpdateMany(ctx,
		bson.M{fieldReceiverID: userID, fieldIsRead: false},
		bson.M{"$set": bson.M{fieldIsRead: true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (s *sysBoxRepoImpl) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{fieldReceiverID: userID, fieldIsRead: false})
}

func (s *sysBoxRepoImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*SysBoxModel, error) {
	var msg SysBoxModel
	if err := s.col.FindOne(ctx, bson.M{fieldID: id}).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

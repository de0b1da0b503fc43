package service

import (
	"Snapfeed/internal/api/dto"
	"Snapfeed/internal/model"
	"Snapfeed/internal/pkg/pagination"
	"Snapfeed/internal/repository"
	"context"
	"strings"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, feedID uint64, content string) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	ListComments(ctx context.Context, viewerID, feedID uint64, page, limit int) (*pagination.Result[*dto.CommentDTO], error)
	CreateReply(ctx context.Context, userID, commentID uint64, content string) (*dto.CommentReplyDTO, error)
	ListReplies(ctx context.Context, viewerID, commentID uint64, page, limit int) (*pagination.Result[*dto.CommentReplyDTO], error)
}

type CommentServiceImpl struct {
	commentRepo repository.CommentRepo
	feedRepo    repository.FeedRepo
	userService UserService
}

func NewCommentService(commentRepo repository.CommentRepo, feedRepo repository.FeedRepo, userService UserService) CommentService {
	return &CommentServiceImpl{
		commentRepo: commentRepo,
		feedRepo:    feedRepo,
		userService: userService,
	}
}

func (s *CommentServiceImpl) CreateComment(ctx context.Context, userID, feedID uint64, content string) (*dto.CommentDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrParamInvalid
	}
	if _, err := s.visibleFeed(ctx, userID, feedID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		FeedID:  feedID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.CreateComment(ctx, comment); err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	names, err := s.usernames(ctx, []uint64{userID})
	if err != nil {
		return nil, err
	}
	return toCommentDTO(comment, names), nil
}

// DeleteComment 评论作者或信息流作者可删除
func (s *CommentServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.commentRepo.GetComment(ctx, commentID)
	if err != nil {
		return mapRepoErr(ctx, err)
	}
	if comment.UserID != userID {
		feed, err := s.feedRepo.GetFeedByID(ctx, comment.FeedID)
		if err != nil {
			return mapRepoErr(ctx, err)
		}
		if feed.UserID != userID {
			return UnauthorizedError
		}
	}
	return mapRepoErr(ctx, s.commentRepo.DeleteComment(ctx, commentID))
}

func (s *CommentServiceImpl) ListComments(ctx context.Context, viewerID, feedID uint64, page, limit int) (*pagination.Result[*dto.CommentDTO], error) {
	if _, err := s.visibleFeed(ctx, viewerID, feedID); err != nil {
		return nil, err
	}
	result, err := s.commentRepo.ListComments(ctx, feedID, page, limit)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}

	ids := make([]uint64, 0, len(result.Items))
	for _, c := range result.Items {
		ids = append(ids, c.UserID)
	}
	names, err := s.usernames(ctx, ids)
	if err != nil {
		return nil, err
	}
	return pagination.Map(result, func(c *model.Comment) *dto.CommentDTO {
		return toCommentDTO(c, names)
	}), nil
}

func (s *CommentServiceImpl) CreateReply(ctx context.Context, userID, commentID uint64, content string) (*dto.CommentReplyDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrParamInvalid
	}
	comment, err := s.commentRepo.GetComment(ctx, commentID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if _, err = s.visibleFeed(ctx, userID, comment.FeedID); err != nil {
		return nil, err
	}

	reply := &model.CommentReply{
		CommentID: commentID,
		UserID:    userID,
		Content:   content,
	}
	if err = s.commentRepo.CreateReply(ctx, reply); err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	names, err := s.usernames(ctx, []uint64{userID})
	if err != nil {
		return nil, err
	}
	return toCommentReplyDTO(reply, names), nil
}

func (s *CommentServiceImpl) ListReplies(ctx context.Context, viewerID, commentID uint64, page, limit int) (*pagination.Result[*dto.CommentReplyDTO], error) {
	comment, err := s.commentRepo.GetComment(ctx, commentID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if _, err = s.visibleFeed(ctx, viewerID, comment.FeedID); err != nil {
		return nil, err
	}
	result, err := s.commentRepo.ListReplies(ctx, commentID, page, limit)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}

	ids := make([]uint64, 0, len(result.Items))
	for _, r := range result.Items {
		ids = append(ids, r.UserID)
	}
	names, err := s.usernames(ctx, ids)
	if err != nil {
		return nil, err
	}
	return pagination.Map(result, func(r *model.CommentReply) *dto.CommentReplyDTO {
		return toCommentReplyDTO(r, names)
	}), nil
}

// visibleFeed 对当前用户不可见的信息流按不存在处理
func (s *CommentServiceImpl) visibleFeed(ctx context.Context, viewerID, feedID uint64) (*model.Feed, error) {
	feed, err := s.feedRepo.GetFeedByID(ctx, feedID)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if !feed.VisibleTo(viewerID) {
		return nil, ErrFeedNotFound
	}
	return feed, nil
}

func (s *CommentServiceImpl) usernames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	users, err := s.userService.GetUserSimpleInfoByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint64]string, len(users))
	for id, u := range users {
		names[id] = u.Username
	}
	return names, nil
}

func toCommentDTO(c *model.Comment, names map[uint64]string) *dto.CommentDTO {
	return &dto.CommentDTO{
		ID:         c.ID,
		FeedID:     c.FeedID,
		UserID:     c.UserID,
		Username:   names[c.UserID],
		Content:    c.Content,
		ReplyCount: c.ReplyCount,
		CreatedAt:  c.CreatedAt,
	}
}

func toCommentReplyDTO(r *model.CommentReply, names map[uint64]string) *dto.CommentReplyDTO {
	return &dto.CommentReplyDTO{
		ID:        r.ID,
		CommentID: r.CommentID,
		UserID:    r.UserID,
		Username:  names[r.UserID],
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

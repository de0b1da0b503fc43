package es

import "time"

// FeedES 写入 ES 的信息流文档
type FeedES struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	Username     string    `json:"username"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	Status       string    `json:"status"`
	DisplayYn    string    `json:"display_yn"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// feedMapping 索引不存在时使用的映射
const feedMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "long"},
      "user_id":       {"type": "long"},
      "username":      {"type": "keyword"},
      "description":   {"type": "text"},
      "tags":          {"type": "keyword"},
      "status":        {"type": "keyword"},
      "display_yn":    {"type": "keyword"},
      "like_count":    {"type": "integer"},
      "comment_count": {"type": "integer"},
      "created_at":    {"type": "date"},
      "updated_at":    {"type": "date"}
    }
  }
}`

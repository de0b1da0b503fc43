package dto

// SysBoxDTO 系统通知返回对象
type SysBoxDTO struct {
	ID         string         `json:"id" copier:"-"`
	SenderID   uint64         `json:"sender_id"`
	SenderName string         `json:"sender_name"`
	Type       int8           `json:"type"`        // 1-点赞, 2-评论, 3-关注
	TargetID   uint64         `json:"target_id"`   // 关联的信息流ID
	Content    string         `json:"content"`     // 预览内容
	Payload    map[string]any `json:"payload"`     // 扩展字段
	IsRead     bool           `json:"is_read"`
	CreatedAt  string         `json:"created_at" copier:"-"`
}

// SysBoxUnreadDTO 未读数返回
type SysBoxUnreadDTO struct {
	UnreadCount int64 `json:"unread_count"`
}

// SysBoxReadDTO 标记已读
type SysBoxReadDTO struct {
	MsgID string `json:"msg_id" binding:"required,len=24,hexadecimal"`
}

// SysBoxReadAllDTO 一键已读影响的条数
type SysBoxReadAllDTO struct {
	Updated int64 `json:"updated"`
}

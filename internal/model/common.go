package model

// YN 是/否 标记位
type YN string

const (
	YnY YN = "Y"
	YnN YN = "N"
)

// Bool 转换为布尔值
func (s YN) Bool() bool {
	return s == YnY
}

// YnOf 由布尔值生成标记位
func YnOf(b bool) YN {
	if b {
		return YnY
	}
	return YnN
}

// Valid 仅允许 Y / N
func (s YN) Valid() bool {
	return s == YnY || s == YnN
}

// All 返回需要迁移的全部模型
func All() []any {
	return []any{
		&User{},
		&Feed{},
		&FeedImage{},
		&FeedLike{},
		&FeedBookmark{},
		&Tag{},
		&MapperFeedTag{},
		&MapperUserFollow{},
		&UserBlock{},
		&Comment{},
		&CommentReply{},
	}
}

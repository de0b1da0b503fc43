package dto

// PopularTagDTO 热门标签
type PopularTagDTO struct {
	TagName  string `json:"tag_name"`
	UseCount int64  `json:"use_count"`
}

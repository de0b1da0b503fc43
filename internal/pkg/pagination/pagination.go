// Package pagination 提供 page/limit 分页的偏移计算、gorm 作用域与统一的分页信封。
package pagination

import (
	"math"

	"gorm.io/gorm"
)

const DefaultPage = 1

var (
	DefaultLimit = 10
	MaxLimit     = 100
)

// SetLimits 由配置覆盖默认每页条数与上限
func SetLimits(defaultLimit, maxLimit int) {
	if defaultLimit > 0 {
		DefaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		MaxLimit = maxLimit
	}
	if DefaultLimit > MaxLimit {
		DefaultLimit = MaxLimit
	}
}

// Result 分页结果信封
type Result[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
}

// TotalPages 总页数
func (r *Result[T]) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return int((r.TotalCount + int64(r.Limit) - 1) / int64(r.Limit))
}

// HasMore 是否存在下一页
func (r *Result[T]) HasMore() bool {
	return r.Page < r.TotalPages()
}

// New 组装分页结果，Items 永不为 nil
func New[T any](items []T, total int64, page, limit int) *Result[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &Result[T]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	}
}

// Normalize 修正非法页码与每页条数
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset 1-based 页码对应的偏移量，超大页码饱和到 math.MaxInt 而不是溢出为负数
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// Scope 查询层分页
func Scope(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(Offset(page, limit)).Limit(limit)
	}
}

// Slice 对已在内存中的完整结果集分页
func Slice[T any](items []T, page, limit int) *Result[T] {
	total := int64(len(items))
	start := Offset(page, limit)
	if start >= len(items) {
		return New[T](nil, total, page, limit)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return New(items[start:end], total, page, limit)
}

// Map 转换分页结果中的元素类型
func Map[T, R any](r *Result[T], fn func(T) R) *Result[R] {
	out := make([]R, len(r.Items))
	for i, item := range r.Items {
		out[i] = fn(item)
	}
	return New(out, r.TotalCount, r.Page, r.Limit)
}

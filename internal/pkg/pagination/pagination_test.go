package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		expected int
	}{
		{name: "first page", page: 1, limit: 10, expected: 0},
		{name: "third page", page: 3, limit: 10, expected: 20},
		{name: "zero page treated as first", page: 0, limit: 10, expected: 0},
		{name: "odd limit", page: 4, limit: 7, expected: 21},
		{name: "huge page saturates", page: math.MaxInt/5, limit: 10, expected: math.MaxInt},
		{name: "max page saturates", page: math.MaxInt, limit: 100, expected: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Offset(tt.page, tt.limit))
		})
	}
}

func TestNormalize(t *testing.T) {
	page, limit := Normalize(0, 0)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultLimit, limit)

	page, limit = Normalize(2, 500)
	assert.Equal(t, 2, page)
	assert.Equal(t, MaxLimit, limit)
}

func TestSlice(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	first := Slice(items, 1, 10)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(25), first.TotalCount)
	assert.Equal(t, 1, first.Items[0])

	last := Slice(items, 3, 10)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, last.Items)
	assert.Equal(t, 3, last.TotalPages())
	assert.False(t, last.HasMore())

	beyond := Slice(items, 4, 10)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(25), beyond.TotalCount)
}

func TestResultTotalPages(t *testing.T) {
	r := New([]string{"a"}, 21, 1, 10)
	assert.Equal(t, 3, r.TotalPages())
	assert.True(t, r.HasMore())

	empty := New[string](nil, 0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages())
	assert.NotNil(t, empty.Items)
}

func TestMap(t *testing.T) {
	r := New([]int{1, 2, 3}, 30, 2, 3)
	out := Map(r, func(i int) string {
		return string(rune('a' + i - 1))
	})
	assert.Equal(t, []string{"a", "b", "c"}, out.Items)
	assert.Equal(t, int64(30), out.TotalCount)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 3, out.Limit)
}

func TestSlice_HugePageIsEmpty(t *testing.T) {
	page := Slice([]int{1, 2, 3}, math.MaxInt/5, 10)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(3), page.TotalCount)
}

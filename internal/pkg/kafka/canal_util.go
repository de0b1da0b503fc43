package kafka

import (
	"fmt"
	"strconv"
)

// StrToUint64 Canal 字段值转 uint64，无法解析时返回 0
func StrToUint64(v any) uint64 {
	switch val := v.(type) {
	case string:
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case float64:
		return uint64(val)
	case int64:
		return uint64(val)
	case uint64:
		return val
	}
	return 0
}

func StrToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	return fmt.Sprint(v)
}

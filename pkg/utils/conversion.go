package utils

import (
	"strconv"
	"strings"
)

// ToInt64 safely converts a scalar database value to int64.
// Handles the shapes drivers actually hand back for numeric columns:
// int64, int, int32, uint64, float64 without a fraction, []byte (raw DB
// bytes, common for BIGINT results), and string.
func ToInt64(val interface{}) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		if v > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	case []byte:
		return parseInt64String(string(v))
	case string:
		return parseInt64String(v)
	default:
		return 0, false
	}
}

func parseInt64String(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

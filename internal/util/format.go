package util

import "fmt"

// FormatPercent 百分比（0-100）保留一位小数
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatCount 数量：整数不带小数，否则保留一位
func FormatCount(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%.1f", value)
}

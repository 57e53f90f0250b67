package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"sorlens/internal/model"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// 独立出现的 1-5（前后不是数字）
	markDigitRe = regexp.MustCompile(`(?:^|\D)([1-5])(?:\D|$)`)
)

// NormalizeLabel 规范化列名/关键词：NFC、小写、ё->е、压缩空白
func NormalizeLabel(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ё", "е")
	return whitespaceRe.ReplaceAllString(s, " ")
}

// ContainsAny 检查字符串是否包含任意一个关键词（不区分大小写）
func ContainsAny(text string, keywords []string) bool {
	text = NormalizeLabel(text)
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		if k := NormalizeLabel(kw); k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// IsMissingMarker 空值或 nan/none/null 之类的占位文本
func IsMissingMarker(s string, markers []string) bool {
	t := NormalizeLabel(s)
	if t == "" {
		return true
	}
	for _, m := range markers {
		if t == NormalizeLabel(m) {
			return true
		}
	}
	return false
}

// ParseNumber 解析数值单元格，兼容 "85%"、"85,5"、不间断空格
func ParseNumber(c model.Cell) (float64, bool) {
	switch v := c.Value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		return parseNumberText(v)
	}
	return 0, false
}

func parseNumberText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ExtractMark 从单元格提取 1-5 的分数
//
// 纯数值必须是 1-5 的整数；文本取第一个独立出现的 1-5，
// 如 "Баға: 4 (хорошо)" -> 4，"отсутствует" -> 无。
func ExtractMark(c model.Cell) (int, bool) {
	if f, ok := ParseNumber(c); ok {
		if f == math.Trunc(f) && f >= 1 && f <= 5 {
			return int(f), true
		}
		return 0, false
	}

	text := c.Text()
	if text == "" {
		return 0, false
	}
	m := markDigitRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	mark, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return mark, true
}

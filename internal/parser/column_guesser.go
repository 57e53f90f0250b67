package parser

import (
	"strings"

	"sorlens/internal/model"
)

// Guess 按列名顺序查找第一个包含任一关键词的列（不区分大小写的子串匹配）
//
// 结果只取决于列名顺序，与关键词顺序无关；未命中返回 false，由调用方回退。
func Guess(labels []string, keywords []string) (int, bool) {
	normKeywords := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if k := NormalizeLabel(kw); k != "" {
			normKeywords = append(normKeywords, k)
		}
	}
	if len(normKeywords) == 0 {
		return 0, false
	}

	for i, label := range labels {
		l := NormalizeLabel(label)
		if l == "" {
			continue
		}
		for _, k := range normKeywords {
			if strings.Contains(l, k) {
				return i, true
			}
		}
	}
	return 0, false
}

// LabelStrategy 列名关键词匹配
type LabelStrategy struct {
	Lexicon *Lexicon
}

func (s LabelStrategy) Name() string { return "label" }

// labelOrder 未完成先于完成解析，避免 "не выполнили" 被 "выполнили" 抢先命中
var labelOrder = []model.ColumnRole{
	model.RoleName, model.RoleClass, model.RoleMark,
	model.RoleQualityPct, model.RolePassPct,
	model.RoleNotCompleted, model.RoleCompleted,
}

func (s LabelStrategy) Resolve(in ResolveInput, mapping *model.ColumnMapping, pending []model.ColumnRole) []Assignment {
	if len(in.Labels) == 0 {
		return nil
	}
	lex := s.Lexicon
	if lex == nil {
		lex = DefaultLexicon()
	}

	taken := takenSet(mapping)
	var out []Assignment
	for _, role := range labelOrder {
		if !containsRole(pending, role) {
			continue
		}
		masked := make([]string, len(in.Labels))
		for i, l := range in.Labels {
			if !taken[i] {
				masked[i] = l
			}
		}
		if idx, ok := Guess(masked, lex.Keywords(role)); ok {
			taken[idx] = true
			out = append(out, Assignment{Role: role, Column: idx})
		}
	}
	return out
}

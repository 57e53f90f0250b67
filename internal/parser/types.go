package parser

import "sorlens/internal/model"

// Classification 行分类结果
type Classification struct {
	AssessmentRows []model.AssessmentRow `json:"assessmentRows"`
	HeaderRows     []int                 `json:"headerRows"`
	LevelGroups    []model.LevelGroup    `json:"levelGroups"`
	// UsedFallback 首列无命中，改用整行拼接匹配（精度更低）
	UsedFallback bool `json:"usedFallback"`
}

// AssessmentIndexes 评估行的行号
func (c Classification) AssessmentIndexes() []int {
	out := make([]int, len(c.AssessmentRows))
	for i, r := range c.AssessmentRows {
		out[i] = r.Index
	}
	return out
}

// ResolveInput 列角色解析输入
type ResolveInput struct {
	Grid *model.RawGrid
	// Labels 列名（按列索引）；可为 nil
	Labels []string
	// Rows 参与数值推断的数据行
	Rows []int
}

// Assignment 策略给出的一个角色分配
type Assignment struct {
	Role   model.ColumnRole
	Column int
}

// Strategy 列角色解析策略
//
// 只为 pending 中的角色给出分配，且不得使用 mapping 中已占用的列。
type Strategy interface {
	Name() string
	Resolve(in ResolveInput, mapping *model.ColumnMapping, pending []model.ColumnRole) []Assignment
}

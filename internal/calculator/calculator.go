package calculator

import (
	"sorlens/internal/model"
)

// Indicator 指标定义
type Indicator struct {
	ID    string  `json:"id"`    // 指标ID
	Name  string  `json:"name"`  // 指标名称
	Value float64 `json:"value"` // 指标值
	Unit  string  `json:"unit"`  // 单位 (如 %、шт.)
}

// IndicatorGroup 指标分组
type IndicatorGroup struct {
	Name       string      `json:"name"`       // 分组名称
	Indicators []Indicator `json:"indicators"` // 指标列表
}

// Overview 整批结果的概览指标
//
// 平均值是各项评估（或各分组）的简单平均，不按人数加权。
func Overview(report *model.BatchReport) []IndicatorGroup {
	files := IndicatorGroup{
		Name: "Файлы",
		Indicators: []Indicator{
			{ID: "files_total", Name: "Всего файлов", Value: float64(report.TotalFiles), Unit: "шт."},
			{ID: "files_imported", Name: "Обработано", Value: float64(report.ImportedFiles), Unit: "шт."},
			{ID: "files_skipped", Name: "Пропущено", Value: float64(report.SkippedFiles), Unit: "шт."},
		},
	}
	groups := []IndicatorGroup{files}

	if len(report.Entries) > 0 {
		var q, p float64
		for _, e := range report.Entries {
			q += e.QualityPct
			p += e.PassPct
		}
		n := float64(len(report.Entries))
		groups = append(groups, IndicatorGroup{
			Name: "Работы СОР/СОЧ",
			Indicators: []Indicator{
				{ID: "works", Name: "Работ", Value: n, Unit: "шт."},
				{ID: "works_quality_avg", Name: "Средний % качества", Value: round1(q / n), Unit: "%"},
				{ID: "works_pass_avg", Name: "Средний % успеваемости", Value: round1(p / n), Unit: "%"},
			},
		})
	}

	if len(report.Metrics) > 0 {
		var q, p float64
		students := 0
		for _, m := range report.Metrics {
			q += m.QualityPct
			p += m.PassPct
			students += m.Total
		}
		n := float64(len(report.Metrics))
		groups = append(groups, IndicatorGroup{
			Name: "Классы",
			Indicators: []Indicator{
				{ID: "groups", Name: "Классов", Value: n, Unit: "шт."},
				{ID: "students", Name: "Учащихся с оценкой", Value: float64(students), Unit: "чел."},
				{ID: "groups_quality_avg", Name: "Средний % качества", Value: round1(q / n), Unit: "%"},
				{ID: "groups_pass_avg", Name: "Средний % успеваемости", Value: round1(p / n), Unit: "%"},
			},
		})
	}

	return groups
}

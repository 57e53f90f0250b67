package calculator

import (
	"fmt"

	"sorlens/internal/model"
)

// Tier 诊断等级
type Tier string

const (
	TierCritical Tier = "critical" // 质量 < 70%
	TierWarning  Tier = "warning"  // 70% <= 质量 < 85%
	TierGood     Tier = "good"     // 质量 >= 85%
)

// 图表配色
const (
	ColorGreen  = "#2ca02c"
	ColorYellow = "#ffcc00"
	ColorOrange = "#ff9900"
	ColorRed    = "#d62728"
)

const (
	remediationThreshold = 50
)

// QualityTier 质量百分比对应的诊断等级
func QualityTier(q float64) Tier {
	switch {
	case q < 70:
		return TierCritical
	case q < 85:
		return TierWarning
	default:
		return TierGood
	}
}

// QualityColor 质量百分比柱的颜色：>=85 绿，>=70 黄，其余红
func QualityColor(q float64) string {
	switch {
	case q >= 85:
		return ColorGreen
	case q >= 70:
		return ColorYellow
	default:
		return ColorRed
	}
}

// PassColor 及格百分比柱的颜色：>=90 绿，>=70 橙，其余红
func PassColor(p float64) string {
	switch {
	case p >= 90:
		return ColorGreen
	case p >= 70:
		return ColorOrange
	default:
		return ColorRed
	}
}

func tierLine(subject string, q float64) string {
	switch QualityTier(q) {
	case TierCritical:
		return fmt.Sprintf("❗ %s: низкое качество (%.0f%%). Требуется повторение и дополнительная диагностика.", subject, q)
	case TierWarning:
		return fmt.Sprintf("⚠️ %s: средние результаты (%.0f%%). Рекомендуется дополнительная работа по трудным заданиям.", subject, q)
	default:
		return fmt.Sprintf("✅ %s: высокий уровень (%.0f%%).", subject, q)
	}
}

// DiagnoseEntries 每项评估一行诊断
func DiagnoseEntries(entries []model.AssessmentEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, tierLine(e.Work, e.QualityPct))
	}
	return lines
}

// DiagnoseGroups 每个分组一行等级诊断，另加补救与纠正说明
func DiagnoseGroups(metrics []model.GroupMetrics) []string {
	var lines []string
	for _, m := range metrics {
		subject := "Класс " + m.Group
		lines = append(lines, tierLine(subject, m.QualityPct))
		if m.QualityPct < remediationThreshold {
			lines = append(lines, fmt.Sprintf("📌 %s: качество ниже %d%%. Нужен план ликвидации пробелов и повторная проверка знаний.", subject, remediationThreshold))
		}
		if m.Twos > 0 {
			lines = append(lines, fmt.Sprintf("✏️ %s: оценок «2»: %d. Необходима коррекционная работа с этими учащимися.", subject, m.Twos))
		}
	}
	return lines
}

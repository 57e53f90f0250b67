package calculator

import (
	"math"

	"sorlens/internal/model"
)

// Aggregate 按分组（班级）汇总学生分数
//
// 无分数的记录先被过滤，因此每个分组 Total >= 1；分组顺序为首次出现的顺序。
// 每次调用都从记录全量重算。
func Aggregate(records []model.StudentRecord) []model.GroupMetrics {
	index := make(map[string]int)
	var out []model.GroupMetrics

	for _, r := range records {
		if !r.HasMark() {
			continue
		}
		i, ok := index[r.Group]
		if !ok {
			i = len(out)
			index[r.Group] = i
			out = append(out, model.GroupMetrics{Group: r.Group})
		}

		m := &out[i]
		m.Total++
		switch *r.Mark {
		case 5:
			m.Fives++
		case 4:
			m.Fours++
		case 3:
			m.Threes++
		case 2:
			m.Twos++
		}
	}

	for i := range out {
		m := &out[i]
		total := float64(m.Total)
		m.QualityPct = round1(float64(m.Fives+m.Fours) / total * 100)
		m.PassPct = round1(float64(m.Total-m.Twos) / total * 100)
	}
	return out
}

// round1 四舍五入到 1 位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

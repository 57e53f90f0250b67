package model

// AssessmentRow 被识别为一项评估（СОР/СОЧ）的行
type AssessmentRow struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// AssessmentEntry 汇总表模式下的一行输出
//
// 数值解析失败时按 0 处理（与 StudentRecord.Mark 的缺省策略不同）。
type AssessmentEntry struct {
	Work         string  `json:"work"`
	Completed    float64 `json:"completed"`
	NotCompleted float64 `json:"notCompleted"`
	QualityPct   float64 `json:"qualityPct"`
	PassPct      float64 `json:"passPct"`
	Source       string  `json:"source"`
}

// LevelGroup 成绩层级（低/中/高）及其同行相邻单元格中的姓名
type LevelGroup struct {
	Label  string `json:"label"`
	Names  string `json:"names"`
	Row    int    `json:"row"`
	Source string `json:"source"`
}

// StudentRecord 学生明细模式下的一条记录
//
// Mark 为 nil 表示无法提取 1-5 的分数，该记录不参与统计。
type StudentRecord struct {
	Name   string `json:"name,omitempty"`
	Group  string `json:"group"`
	Mark   *int   `json:"mark"`
	Source string `json:"source"`
}

// HasMark 是否有有效分数
func (r StudentRecord) HasMark() bool {
	return r.Mark != nil
}

// GroupMetrics 按分组（班级）计算的指标，每次汇总全量重算
type GroupMetrics struct {
	Group      string  `json:"group"`
	Total      int     `json:"total"`
	Fives      int     `json:"fives"`
	Fours      int     `json:"fours"`
	Threes     int     `json:"threes"`
	Twos       int     `json:"twos"`
	QualityPct float64 `json:"qualityPct"`
	PassPct    float64 `json:"passPct"`
}

package model

import (
	"fmt"
	"time"
)

// ImportMode 解析模式
type ImportMode string

const (
	ModeAuto      ImportMode = "auto"      // 有评估行则按汇总表，否则按学生明细
	ModeAggregate ImportMode = "aggregate" // 每行一项评估（СОР/СОЧ）
	ModeStudent   ImportMode = "student"   // 每行一个学生
)

// Valid 是否为已知模式
func (m ImportMode) Valid() bool {
	switch m {
	case ModeAuto, ModeAggregate, ModeStudent:
		return true
	}
	return false
}

// SkipKind 文件跳过原因分类
type SkipKind string

const (
	SkipNoAssessmentRows SkipKind = "no_assessment_rows"
	SkipUnresolvedRole   SkipKind = "unresolved_column_role"
	SkipFileRead         SkipKind = "file_read_failure"
)

// SkipReason 单个文件被跳过的原因（面向用户展示）
type SkipReason struct {
	File    string   `json:"file"`
	Kind    SkipKind `json:"kind"`
	Role    string   `json:"role,omitempty"`
	Message string   `json:"message"`
}

func (s SkipReason) String() string {
	if s.Role != "" {
		return fmt.Sprintf("%s: %s (%s)", s.File, s.Message, s.Role)
	}
	return fmt.Sprintf("%s: %s", s.File, s.Message)
}

// 文件处理状态
const (
	StatusImported = "imported"
	StatusSkipped  = "skipped"
)

// FileResult 单个文件的处理结果
type FileResult struct {
	File         string         `json:"file"`
	Sheet        string         `json:"sheet,omitempty"`
	Mode         ImportMode     `json:"mode"`
	Status       string         `json:"status"`
	Entries      int            `json:"entries"`
	Records      int            `json:"records"`
	LevelGroups  int            `json:"levelGroups"`
	RowsDropped  int            `json:"rowsDropped"`
	MarksMissing int            `json:"marksMissing"`
	UsedFallback bool           `json:"usedFallback"`
	Mapping      *ColumnMapping `json:"mapping,omitempty"`
	Skip         *SkipReason    `json:"skip,omitempty"`
	Duration     time.Duration  `json:"duration"`
}

// BatchReport 一次批量分析的完整输出
type BatchReport struct {
	RunID         string            `json:"runId"`
	Mode          ImportMode        `json:"mode"`
	TotalFiles    int               `json:"totalFiles"`
	ImportedFiles int               `json:"importedFiles"`
	SkippedFiles  int               `json:"skippedFiles"`
	Files         []FileResult      `json:"files"`
	Entries       []AssessmentEntry `json:"entries"`
	Records       []StudentRecord   `json:"records"`
	LevelGroups   []LevelGroup      `json:"levelGroups"`
	Metrics       []GroupMetrics    `json:"metrics"`
	Diagnostics   []string          `json:"diagnostics"`
	SkipReasons   []SkipReason      `json:"skipReasons"`
	StartedAt     time.Time         `json:"startedAt"`
	Duration      time.Duration     `json:"duration"`
}

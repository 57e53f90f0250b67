package importer

import (
	"sorlens/internal/model"
	"sorlens/internal/parser"
)

// Builder 由已解析的行列构建输出记录
type Builder struct {
	lexicon *parser.Lexicon
}

// NewBuilder 创建记录构建器
func NewBuilder(lexicon *parser.Lexicon) *Builder {
	if lexicon == nil {
		lexicon = parser.DefaultLexicon()
	}
	return &Builder{lexicon: lexicon}
}

// BuildStats 学生明细构建统计
type BuildStats struct {
	Rows         int `json:"rows"`         // 参与构建的非空行
	Built        int `json:"built"`        // 产出的记录数
	Dropped      int `json:"dropped"`      // 班级为空被丢弃的行
	MarksMissing int `json:"marksMissing"` // 无法提取分数的记录
}

// BuildEntries 每个评估行产出一条汇总记录，缺失或无法解析的数值按 0 处理
func (b *Builder) BuildEntries(g *model.RawGrid, mapping *model.ColumnMapping, rows []model.AssessmentRow) []model.AssessmentEntry {
	entries := make([]model.AssessmentEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, model.AssessmentEntry{
			Work:         r.Label,
			Completed:    numberOrZero(g, mapping, r.Index, model.RoleCompleted),
			NotCompleted: numberOrZero(g, mapping, r.Index, model.RoleNotCompleted),
			QualityPct:   numberOrZero(g, mapping, r.Index, model.RoleQualityPct),
			PassPct:      numberOrZero(g, mapping, r.Index, model.RolePassPct),
			Source:       g.Source(),
		})
	}
	return entries
}

func numberOrZero(g *model.RawGrid, mapping *model.ColumnMapping, row int, role model.ColumnRole) float64 {
	col, ok := mapping.Get(role)
	if !ok {
		return 0
	}
	v, ok := parser.ParseNumber(g.Cell(row, col))
	if !ok {
		return 0
	}
	return v
}

// BuildRecords 每个数据行产出一条学生记录
//
// 班级为空的行被丢弃；分数无法提取时 Mark 为 nil，不按 0 处理。
// mapping 中必须已有班级列。
func (b *Builder) BuildRecords(g *model.RawGrid, mapping *model.ColumnMapping, rows []int) ([]model.StudentRecord, BuildStats) {
	var stats BuildStats
	classCol, ok := mapping.Get(model.RoleClass)
	if !ok {
		return nil, stats
	}
	nameCol, hasName := mapping.Get(model.RoleName)
	markCol, hasMark := mapping.Get(model.RoleMark)

	var records []model.StudentRecord
	for _, row := range rows {
		if g.IsBlankRow(row) {
			continue
		}
		stats.Rows++

		group := b.text(g.Cell(row, classCol))
		if group == "" {
			stats.Dropped++
			continue
		}

		rec := model.StudentRecord{Group: group, Source: g.Source()}
		if hasName {
			rec.Name = b.text(g.Cell(row, nameCol))
		}
		if hasMark {
			if m, ok := parser.ExtractMark(g.Cell(row, markCol)); ok {
				rec.Mark = &m
			}
		}
		if rec.Mark == nil {
			stats.MarksMissing++
		}
		records = append(records, rec)
	}
	stats.Built = len(records)
	return records, stats
}

// text 单元格文本，缺失标记视为空
func (b *Builder) text(c model.Cell) string {
	t := c.Text()
	if parser.IsMissingMarker(t, b.lexicon.MissingMarkers) {
		return ""
	}
	return t
}

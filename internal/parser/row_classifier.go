package parser

import (
	"strings"

	"sorlens/internal/model"
)

const (
	MinLevelSpan     = 3
	MaxLevelSpan     = 5
	DefaultLevelSpan = 3
)

// RowClassifier 行分类器：评估行（СОР/СОЧ）与表头/层级行
type RowClassifier struct {
	lexicon *Lexicon
	span    int
}

// NewRowClassifier 创建行分类器，span 为层级标签右侧取姓名的单元格数（3-5）
func NewRowClassifier(lexicon *Lexicon, span int) *RowClassifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	if span < MinLevelSpan {
		span = MinLevelSpan
	}
	if span > MaxLevelSpan {
		span = MaxLevelSpan
	}
	return &RowClassifier{lexicon: lexicon, span: span}
}

// Classify 对整个网格分类
func (r *RowClassifier) Classify(g *model.RawGrid) Classification {
	result := Classification{}

	result.AssessmentRows = r.findAssessmentRows(g, false)
	if len(result.AssessmentRows) == 0 {
		result.AssessmentRows = r.findAssessmentRows(g, true)
		result.UsedFallback = len(result.AssessmentRows) > 0
	}

	isAssessment := make(map[int]bool, len(result.AssessmentRows))
	for _, a := range result.AssessmentRows {
		isAssessment[a.Index] = true
	}

	for i := 0; i < g.NumRows(); i++ {
		levels := r.levelGroupsInRow(g, i)
		result.LevelGroups = append(result.LevelGroups, levels...)

		if isAssessment[i] {
			continue
		}
		if len(levels) > 0 || ContainsAny(g.RowText(i), r.lexicon.HeaderHints) {
			result.HeaderRows = append(result.HeaderRows, i)
		}
	}

	return result
}

// findAssessmentRows 首列匹配；wholeRow 为 true 时用整行拼接匹配
func (r *RowClassifier) findAssessmentRows(g *model.RawGrid, wholeRow bool) []model.AssessmentRow {
	var rows []model.AssessmentRow
	for i := 0; i < g.NumRows(); i++ {
		if !wholeRow {
			first := g.Cell(i, 0).Text()
			if IsAssessmentLabel(first) {
				rows = append(rows, model.AssessmentRow{Index: i, Label: first})
			}
			continue
		}

		if !IsAssessmentLabel(g.RowText(i)) {
			continue
		}
		rows = append(rows, model.AssessmentRow{Index: i, Label: fallbackLabel(g, i)})
	}
	return rows
}

// fallbackLabel 整行命中时，取第一个自身带标记的单元格作为名称
func fallbackLabel(g *model.RawGrid, row int) string {
	for _, c := range g.Row(row) {
		if t := c.Text(); t != "" && IsAssessmentLabel(t) {
			return t
		}
	}
	return g.RowText(row)
}

// levelGroupsInRow 行内每个层级关键词单元格，连同其右侧 span 个单元格中的姓名
func (r *RowClassifier) levelGroupsInRow(g *model.RawGrid, row int) []model.LevelGroup {
	var groups []model.LevelGroup
	cells := g.Row(row)
	for j, c := range cells {
		text, ok := c.Value.(string)
		if !ok || !r.lexicon.IsLevelLabel(text) {
			continue
		}

		names := make([]string, 0, r.span)
		for k := j + 1; k <= j+r.span && k < len(cells); k++ {
			v := cells[k].Text()
			if IsMissingMarker(v, r.lexicon.MissingMarkers) {
				continue
			}
			names = append(names, v)
		}

		groups = append(groups, model.LevelGroup{
			Label:  strings.TrimSpace(text),
			Names:  strings.Join(names, ", "),
			Row:    row,
			Source: g.Source(),
		})
	}
	return groups
}

// Labels 由表头行拼出每列的列名
//
// 表头行取 headerRows 与第一个评估行之前的所有非评估行；同列多行以空格拼接。
func Labels(g *model.RawGrid, c Classification) []string {
	if g.NumCols() == 0 {
		return nil
	}

	first := g.NumRows()
	if len(c.AssessmentRows) > 0 {
		first = c.AssessmentRows[0].Index
	}
	isAssessment := make(map[int]bool, len(c.AssessmentRows))
	for _, a := range c.AssessmentRows {
		isAssessment[a.Index] = true
	}

	use := make(map[int]bool)
	for i := 0; i < first; i++ {
		use[i] = true
	}
	for _, h := range c.HeaderRows {
		use[h] = true
	}

	labels := make([]string, g.NumCols())
	found := false
	for i := 0; i < g.NumRows(); i++ {
		if !use[i] || isAssessment[i] {
			continue
		}
		for j := range labels {
			t, ok := g.Cell(i, j).Value.(string)
			if !ok || strings.TrimSpace(t) == "" {
				continue
			}
			found = true
			if labels[j] == "" {
				labels[j] = strings.TrimSpace(t)
			} else {
				labels[j] += " " + strings.TrimSpace(t)
			}
		}
	}
	if !found {
		return nil
	}
	return labels
}

// StudentHeader 学生明细表的表头行：前 maxScan 行中第一个含任一角色关键词的行
func StudentHeader(g *model.RawGrid, lexicon *Lexicon, maxScan int) (int, []string, bool) {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	for i := 0; i < g.NumRows() && i < maxScan; i++ {
		labels := make([]string, g.NumCols())
		hit := false
		for j := range labels {
			t, ok := g.Cell(i, j).Value.(string)
			if !ok {
				continue
			}
			labels[j] = t
			for _, role := range model.StudentRoles {
				if ContainsAny(t, lexicon.Keywords(role)) {
					hit = true
				}
			}
		}
		if hit {
			return i, labels, true
		}
	}
	return -1, nil, false
}

// IsAssessmentLabel 文本是否为评估标签（СОР/СОЧ 及其变体）
func (r *RowClassifier) IsAssessmentLabel(s string) bool {
	return IsAssessmentLabel(s)
}

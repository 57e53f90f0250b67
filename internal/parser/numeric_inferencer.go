package parser

import "sorlens/internal/model"

const (
	percentMax    = 100
	completionMax = 200
)

// columnNumbers 某列在数据行中的所有数值（非数值与空值忽略）
func columnNumbers(in ResolveInput, col int) []float64 {
	var out []float64
	for _, row := range in.Rows {
		if v, ok := ParseNumber(in.Grid.Cell(row, col)); ok {
			out = append(out, v)
		}
	}
	return out
}

// allWithin 至少一个数值且全部落在 [0, max]
func allWithin(values []float64, max float64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v < 0 || v > max {
			return false
		}
	}
	return true
}

// InferPercentColumns 按列顺序返回至多 n 个百分比列（全部数值在 [0,100]）
func InferPercentColumns(in ResolveInput, taken func(col int) bool, n int) []int {
	var cols []int
	for c := 0; c < in.Grid.NumCols() && len(cols) < n; c++ {
		if taken(c) {
			continue
		}
		if allWithin(columnNumbers(in, c), percentMax) {
			cols = append(cols, c)
		}
	}
	return cols
}

// InferMarkColumn 第一个含 1-5 分数单元格的列
func InferMarkColumn(in ResolveInput, taken func(col int) bool) (int, bool) {
	for c := 0; c < in.Grid.NumCols(); c++ {
		if taken(c) {
			continue
		}
		for _, row := range in.Rows {
			if _, ok := ExtractMark(in.Grid.Cell(row, c)); ok {
				return c, true
			}
		}
	}
	return 0, false
}

// CompletionColumns 完成/未完成列推断结果
type CompletionColumns struct {
	// Ordered 按分配顺序排列的列
	Ordered []int
	// Primary 为 true 时顺序是 [NotCompleted, Completed]（质量列左侧由近到远）；
	// 否则是回退扫描的 [Completed, NotCompleted]（全表从左到右）
	Primary bool
}

// InferCompletionColumns 推断完成/未完成列
//
// 首选质量列左侧、由近到远含数值的列；不足 need 个时回退到全表扫描
// 数值全部在 [0,200] 的列。两条路径的角色顺序相反，保持源表格的约定。
func InferCompletionColumns(in ResolveInput, quality int, hasQuality bool, taken func(col int) bool, need int) CompletionColumns {
	if need <= 0 {
		return CompletionColumns{}
	}

	if hasQuality {
		var found []int
		for c := quality - 1; c >= 0 && len(found) < need; c-- {
			if taken(c) {
				continue
			}
			if len(columnNumbers(in, c)) > 0 {
				found = append(found, c)
			}
		}
		if len(found) >= need {
			return CompletionColumns{Ordered: found, Primary: true}
		}
	}

	var found []int
	for c := 0; c < in.Grid.NumCols() && len(found) < need; c++ {
		if taken(c) {
			continue
		}
		if allWithin(columnNumbers(in, c), completionMax) {
			found = append(found, c)
		}
	}
	return CompletionColumns{Ordered: found}
}

// NumericRangeStrategy 按数值范围推断百分比列与分数列
type NumericRangeStrategy struct{}

func (NumericRangeStrategy) Name() string { return "numeric_range" }

func (NumericRangeStrategy) Resolve(in ResolveInput, mapping *model.ColumnMapping, pending []model.ColumnRole) []Assignment {
	if in.Grid == nil {
		return nil
	}
	taken := takenSet(mapping)
	isTaken := func(c int) bool { return taken[c] }

	var out []Assignment

	var pctRoles []model.ColumnRole
	for _, r := range []model.ColumnRole{model.RoleQualityPct, model.RolePassPct} {
		if containsRole(pending, r) {
			pctRoles = append(pctRoles, r)
		}
	}
	if len(pctRoles) > 0 {
		cols := InferPercentColumns(in, isTaken, len(pctRoles))
		for i, c := range cols {
			taken[c] = true
			out = append(out, Assignment{Role: pctRoles[i], Column: c})
		}
	}

	if containsRole(pending, model.RoleMark) {
		if c, ok := InferMarkColumn(in, isTaken); ok {
			taken[c] = true
			out = append(out, Assignment{Role: model.RoleMark, Column: c})
		}
	}

	return out
}

// AdjacencyStrategy 按与质量列的相对位置推断完成/未完成列
type AdjacencyStrategy struct{}

func (AdjacencyStrategy) Name() string { return "adjacency" }

func (AdjacencyStrategy) Resolve(in ResolveInput, mapping *model.ColumnMapping, pending []model.ColumnRole) []Assignment {
	if in.Grid == nil {
		return nil
	}
	taken := takenSet(mapping)
	isTaken := func(c int) bool { return taken[c] }

	primaryOrder := filterRoles(pending, model.RoleNotCompleted, model.RoleCompleted)
	if len(primaryOrder) == 0 {
		return nil
	}
	quality, hasQuality := mapping.Get(model.RoleQualityPct)

	found := InferCompletionColumns(in, quality, hasQuality, isTaken, len(primaryOrder))
	order := primaryOrder
	if !found.Primary {
		order = filterRoles(pending, model.RoleCompleted, model.RoleNotCompleted)
	}

	var out []Assignment
	for i, c := range found.Ordered {
		if i >= len(order) {
			break
		}
		out = append(out, Assignment{Role: order[i], Column: c})
	}
	return out
}

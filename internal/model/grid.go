package model

import (
	"math"
	"strconv"
	"strings"
)

// Cell 网格单元格（位置 + 无类型值）
//
// Value 只会是 nil（空单元格）、string 或 float64。
type Cell struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value any `json:"value"`
}

// IsEmpty 是否为空单元格
func (c Cell) IsEmpty() bool {
	switch v := c.Value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// Text 单元格的字符串形式，空单元格返回 ""
func (c Cell) Text() string {
	switch v := c.Value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// RawGrid 原始二维网格，行列均从 0 开始，不附带任何语义
//
// 创建后只读；缺失单元格补齐为空单元格，保证每行等长。
type RawGrid struct {
	source string
	sheet  string
	width  int
	rows   [][]Cell
}

// NewRawGrid 由字符串行构建网格，可解析为数字的值存为 float64
func NewRawGrid(source string, values [][]string) *RawGrid {
	width := 0
	for _, r := range values {
		if len(r) > width {
			width = len(r)
		}
	}

	rows := make([][]Cell, len(values))
	for i, r := range values {
		row := make([]Cell, width)
		for j := 0; j < width; j++ {
			row[j] = Cell{Row: i, Col: j}
			if j < len(r) {
				row[j].Value = typedValue(r[j])
			}
		}
		rows[i] = row
	}

	return &RawGrid{source: source, width: width, rows: rows}
}

// WithSheet 返回记录了工作表名的网格（共享只读数据）
func (g *RawGrid) WithSheet(sheet string) *RawGrid {
	cp := *g
	cp.sheet = sheet
	return &cp
}

func typedValue(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// Source 来源文件名
func (g *RawGrid) Source() string { return g.source }

// Sheet 来源工作表名（CSV 为空）
func (g *RawGrid) Sheet() string { return g.sheet }

// NumRows 行数
func (g *RawGrid) NumRows() int { return len(g.rows) }

// NumCols 列数
func (g *RawGrid) NumCols() int { return g.width }

// Cell 取单元格，越界返回空单元格
func (g *RawGrid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= g.width {
		return Cell{Row: row, Col: col}
	}
	return g.rows[row][col]
}

// Row 返回一行的副本
func (g *RawGrid) Row(row int) []Cell {
	if row < 0 || row >= len(g.rows) {
		return nil
	}
	out := make([]Cell, g.width)
	copy(out, g.rows[row])
	return out
}

// RowText 一行所有非空单元格以空格拼接
func (g *RawGrid) RowText(row int) string {
	parts := make([]string, 0, g.width)
	for _, c := range g.Row(row) {
		if t := c.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// IsBlankRow 整行是否为空
func (g *RawGrid) IsBlankRow(row int) bool {
	for _, c := range g.Row(row) {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

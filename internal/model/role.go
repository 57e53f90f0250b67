package model

import (
	"encoding/json"
	"sort"
)

// ColumnRole 列语义角色
type ColumnRole int

const (
	RoleName         ColumnRole = iota // ФИО / аты-жөні
	RoleClass                          // класс / сынып
	RoleMark                           // оценка / баға
	RoleQualityPct                     // % качества
	RolePassPct                        // % успеваемости
	RoleCompleted                      // выполнили
	RoleNotCompleted                   // не выполнили
)

var roleNames = map[ColumnRole]string{
	RoleName:         "name",
	RoleClass:        "class",
	RoleMark:         "mark",
	RoleQualityPct:   "quality_pct",
	RolePassPct:      "pass_pct",
	RoleCompleted:    "completed",
	RoleNotCompleted: "not_completed",
}

// AllRoles 全部角色（按枚举顺序）
var AllRoles = []ColumnRole{
	RoleName, RoleClass, RoleMark, RoleQualityPct, RolePassPct, RoleCompleted, RoleNotCompleted,
}

// AggregateRoles 汇总表模式需要解析的角色
var AggregateRoles = []ColumnRole{RoleQualityPct, RolePassPct, RoleNotCompleted, RoleCompleted}

// StudentRoles 学生明细模式需要解析的角色
var StudentRoles = []ColumnRole{RoleName, RoleClass, RoleMark}

func (r ColumnRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// ParseColumnRole 由名称解析角色
func ParseColumnRole(s string) (ColumnRole, bool) {
	for r, name := range roleNames {
		if name == s {
			return r, true
		}
	}
	return 0, false
}

// ColumnMapping 角色到列索引的部分映射（每个角色至多一列）
type ColumnMapping struct {
	index map[ColumnRole]int
	by    map[ColumnRole]string
}

// NewColumnMapping 创建空映射
func NewColumnMapping() *ColumnMapping {
	return &ColumnMapping{
		index: make(map[ColumnRole]int),
		by:    make(map[ColumnRole]string),
	}
}

// Get 查询角色对应列
func (m *ColumnMapping) Get(role ColumnRole) (int, bool) {
	idx, ok := m.index[role]
	return idx, ok
}

// Has 角色是否已解析
func (m *ColumnMapping) Has(role ColumnRole) bool {
	_, ok := m.index[role]
	return ok
}

// Set 记录角色列；角色已存在或列已被占用时返回 false
func (m *ColumnMapping) Set(role ColumnRole, col int, strategy string) bool {
	if m.Has(role) || m.Assigned(col) {
		return false
	}
	m.index[role] = col
	m.by[role] = strategy
	return true
}

// Assigned 列是否已分配给某个角色
func (m *ColumnMapping) Assigned(col int) bool {
	for _, c := range m.index {
		if c == col {
			return true
		}
	}
	return false
}

// Strategy 解析该角色所用的策略名
func (m *ColumnMapping) Strategy(role ColumnRole) string {
	return m.by[role]
}

// Len 已解析角色数
func (m *ColumnMapping) Len() int { return len(m.index) }

// Missing 返回 roles 中尚未解析的角色（保持入参顺序）
func (m *ColumnMapping) Missing(roles []ColumnRole) []ColumnRole {
	var out []ColumnRole
	for _, r := range roles {
		if !m.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// MappedColumn 单个角色映射（用于序列化/展示）
type MappedColumn struct {
	Role     string `json:"role"`
	Column   int    `json:"column"`
	Strategy string `json:"strategy"`
}

// Columns 按角色顺序列出映射
func (m *ColumnMapping) Columns() []MappedColumn {
	out := make([]MappedColumn, 0, len(m.index))
	for r, c := range m.index {
		out = append(out, MappedColumn{Role: r.String(), Column: c, Strategy: m.by[r]})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, _ := ParseColumnRole(out[i].Role)
		rj, _ := ParseColumnRole(out[j].Role)
		return ri < rj
	})
	return out
}

// MarshalJSON 序列化为列表
func (m *ColumnMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Columns())
}

package parser

import "sorlens/internal/model"

// Resolver 列角色解析链：按顺序执行策略，每个角色取第一个成功的结果
type Resolver struct {
	strategies []Strategy
}

// NewResolver 创建解析链
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// DefaultResolver 列名关键词 -> 数值范围 -> 相对位置
func DefaultResolver(lexicon *Lexicon) *Resolver {
	return NewResolver(
		LabelStrategy{Lexicon: lexicon},
		NumericRangeStrategy{},
		AdjacencyStrategy{},
	)
}

// Resolve 解析 roles 中的角色，未解析的角色不出现在结果中
func (r *Resolver) Resolve(in ResolveInput, roles []model.ColumnRole) *model.ColumnMapping {
	mapping := model.NewColumnMapping()
	for _, s := range r.strategies {
		pending := mapping.Missing(roles)
		if len(pending) == 0 {
			break
		}
		for _, a := range s.Resolve(in, mapping, pending) {
			if a.Column < 0 || !containsRole(pending, a.Role) {
				continue
			}
			mapping.Set(a.Role, a.Column, s.Name())
		}
	}
	return mapping
}

func takenSet(mapping *model.ColumnMapping) map[int]bool {
	taken := make(map[int]bool)
	if mapping == nil {
		return taken
	}
	for _, mc := range mapping.Columns() {
		taken[mc.Column] = true
	}
	return taken
}

func containsRole(roles []model.ColumnRole, role model.ColumnRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// filterRoles 按 order 的顺序返回 pending 中存在的角色
func filterRoles(pending []model.ColumnRole, order ...model.ColumnRole) []model.ColumnRole {
	var out []model.ColumnRole
	for _, r := range order {
		if containsRole(pending, r) {
			out = append(out, r)
		}
	}
	return out
}

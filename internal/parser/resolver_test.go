package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorlens/internal/model"
)

func TestResolver_ScenarioQualityByRange(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"СОР №1", "90"},
		{"текст", ""},
		{"СОЧ №1", "60"},
	})
	c := NewRowClassifier(nil, DefaultLevelSpan).Classify(g)
	require.Equal(t, []int{0, 2}, c.AssessmentIndexes())

	in := ResolveInput{Grid: g, Labels: Labels(g, c), Rows: c.AssessmentIndexes()}
	m := DefaultResolver(nil).Resolve(in, model.AggregateRoles)

	col, ok := m.Get(model.RoleQualityPct)
	require.True(t, ok)
	assert.Equal(t, 1, col)
	assert.Equal(t, "numeric_range", m.Strategy(model.RoleQualityPct))

	var qualities []float64
	for _, row := range in.Rows {
		v, ok := ParseNumber(g.Cell(row, col))
		require.True(t, ok)
		qualities = append(qualities, v)
	}
	assert.Equal(t, []float64{90, 60}, qualities)
	assert.False(t, m.Has(model.RoleCompleted))
}

func TestResolver_AllByLabel(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"Работа", "Выполнили", "Не выполнили", "% качества", "% успеваемости"},
		{"СОР №1", "25", "2", "80", "100"},
	})
	c := NewRowClassifier(nil, DefaultLevelSpan).Classify(g)
	in := ResolveInput{Grid: g, Labels: Labels(g, c), Rows: c.AssessmentIndexes()}

	m := DefaultResolver(nil).Resolve(in, model.AggregateRoles)
	want := map[model.ColumnRole]int{
		model.RoleCompleted:    1,
		model.RoleNotCompleted: 2,
		model.RoleQualityPct:   3,
		model.RolePassPct:      4,
	}
	for role, col := range want {
		got, ok := m.Get(role)
		require.True(t, ok, role.String())
		assert.Equal(t, col, got, role.String())
		assert.Equal(t, "label", m.Strategy(role))
	}
}

func TestResolver_LabelThenRange(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"Работа", "Качество", ""},
		{"СОР №1", "80", "95"},
		{"СОЧ №1", "70", "100"},
	})
	c := NewRowClassifier(nil, DefaultLevelSpan).Classify(g)
	in := ResolveInput{Grid: g, Labels: Labels(g, c), Rows: c.AssessmentIndexes()}

	m := DefaultResolver(nil).Resolve(in, model.AggregateRoles)

	q, _ := m.Get(model.RoleQualityPct)
	p, ok := m.Get(model.RolePassPct)
	require.True(t, ok)
	assert.Equal(t, 1, q)
	assert.Equal(t, 2, p)
	assert.Equal(t, "label", m.Strategy(model.RoleQualityPct))
	assert.Equal(t, "numeric_range", m.Strategy(model.RolePassPct))
	assert.Equal(t, 2, m.Len())
}

func TestResolver_StudentRoles(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("s.csv", [][]string{
		{"ФИО", "Сынып", "Баға"},
		{"Иванов", "7А", "5"},
		{"Петров", "7А", "отсутствует"},
	})
	row, labels, ok := StudentHeader(g, nil, 10)
	require.True(t, ok)
	require.Equal(t, 0, row)

	in := ResolveInput{Grid: g, Labels: labels, Rows: []int{1, 2}}
	m := DefaultResolver(nil).Resolve(in, model.StudentRoles)

	assert.Empty(t, m.Missing(model.StudentRoles))
	mark, _ := m.Get(model.RoleMark)
	assert.Equal(t, 2, mark)
}

type fixedStrategy struct {
	name string
	out  []Assignment
}

func (f fixedStrategy) Name() string { return f.name }

func (f fixedStrategy) Resolve(ResolveInput, *model.ColumnMapping, []model.ColumnRole) []Assignment {
	return f.out
}

func TestResolver_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	r := NewResolver(
		fixedStrategy{name: "a", out: []Assignment{{Role: model.RoleClass, Column: 1}}},
		fixedStrategy{name: "b", out: []Assignment{
			{Role: model.RoleClass, Column: 4},
			{Role: model.RoleMark, Column: 1},
			{Role: model.RoleName, Column: -1},
			{Role: model.RoleQualityPct, Column: 3},
		}},
	)

	m := r.Resolve(ResolveInput{}, model.StudentRoles)

	class, _ := m.Get(model.RoleClass)
	assert.Equal(t, 1, class)
	assert.Equal(t, "a", m.Strategy(model.RoleClass))
	assert.False(t, m.Has(model.RoleMark), "column already taken")
	assert.False(t, m.Has(model.RoleName))
	assert.False(t, m.Has(model.RoleQualityPct), "role not requested")
}

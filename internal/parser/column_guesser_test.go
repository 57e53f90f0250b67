package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorlens/internal/model"
)

func TestGuess_FirstMatchByLabelOrder(t *testing.T) {
	t.Parallel()

	labels := []string{"Работа", "% успеваемости", "% КАЧЕСТВА"}

	idx, ok := Guess(labels, []string{"качеств", "успеваем"})
	require.True(t, ok)
	assert.Equal(t, 1, idx, "label order wins over keyword order")

	idx2, ok := Guess(labels, []string{"успеваем", "качеств"})
	require.True(t, ok)
	assert.Equal(t, idx, idx2)
}

func TestGuess_Deterministic(t *testing.T) {
	t.Parallel()

	labels := []string{"ФИО", "Сынып", "Баға", "Класс"}
	keywords := DefaultLexicon().Keywords(model.RoleClass)

	first, ok := Guess(labels, keywords)
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		got, ok := Guess(labels, keywords)
		require.True(t, ok)
		require.Equal(t, first, got)
	}
	assert.Equal(t, 1, first)
}

func TestGuess_NoMatch(t *testing.T) {
	t.Parallel()

	_, ok := Guess([]string{"a", "b"}, []string{"класс"})
	assert.False(t, ok)

	_, ok = Guess(nil, []string{"класс"})
	assert.False(t, ok)

	_, ok = Guess([]string{"класс"}, nil)
	assert.False(t, ok)
}

func TestLabelStrategy_NotCompletedBeforeCompleted(t *testing.T) {
	t.Parallel()

	in := ResolveInput{Labels: []string{"Работа", "Не выполнили", "Выполнили", "% качества", "% успеваемости"}}
	got := LabelStrategy{Lexicon: DefaultLexicon()}.Resolve(in, model.NewColumnMapping(), model.AggregateRoles)

	byRole := map[model.ColumnRole]int{}
	for _, a := range got {
		byRole[a.Role] = a.Column
	}
	assert.Equal(t, map[model.ColumnRole]int{
		model.RoleQualityPct:   3,
		model.RolePassPct:      4,
		model.RoleNotCompleted: 1,
		model.RoleCompleted:    2,
	}, byRole)
}

func TestLabelStrategy_SkipsTakenColumns(t *testing.T) {
	t.Parallel()

	mapping := model.NewColumnMapping()
	require.True(t, mapping.Set(model.RoleClass, 0, "test"))

	in := ResolveInput{Labels: []string{"Класс", "Класс руководителя", "Оценка"}}
	got := LabelStrategy{}.Resolve(in, mapping, []model.ColumnRole{model.RoleMark})
	require.Len(t, got, 1)
	assert.Equal(t, Assignment{Role: model.RoleMark, Column: 2}, got[0])
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorlens/internal/model"
)

func TestIsAssessmentLabel(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"СОР №1", "СОЧ за 2 четверть", "С О Р 2", "с.о.ч", "COP 3", "C0Ч", "sor 1", "SOCH",
		"БЖБ-1", "ТЖБ", "Работа (СОР)", "1. СОР по алгебре",
	} {
		assert.True(t, IsAssessmentLabel(s), s)
	}
	for _, s := range []string{"Сорокина Анна", "текст", "сорт", "", "Класс 7А", "Всего", "Срез знаний с 04.10", "с 0 р", "С 04"} {
		assert.False(t, IsAssessmentLabel(s), s)
	}
}

func TestClassify_FirstCellRows(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"СОР №1", "90"},
		{"текст", ""},
		{"СОЧ №1", "60"},
	})

	c := NewRowClassifier(nil, 3).Classify(g)
	require.Len(t, c.AssessmentRows, 2)
	assert.Equal(t, []int{0, 2}, c.AssessmentIndexes())
	assert.Equal(t, "СОР №1", c.AssessmentRows[0].Label)
	assert.False(t, c.UsedFallback)
}

func TestClassify_SpacedLettersAnyPosition(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.csv", [][]string{
		{"Отчёт"},
		{"С О Р  №2", "20"},
	})

	c := NewRowClassifier(nil, 3).Classify(g)
	require.Len(t, c.AssessmentRows, 1)
	assert.Equal(t, 1, c.AssessmentRows[0].Index)
}

func TestClassify_WholeRowFallback(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.csv", [][]string{
		{"№", "Работа", "% качества"},
		{"1", "СОР №1", "80"},
		{"2", "СОЧ", "70"},
		{"", "Итого", ""},
	})

	c := NewRowClassifier(nil, 3).Classify(g)
	require.True(t, c.UsedFallback)
	require.Len(t, c.AssessmentRows, 2)
	assert.Equal(t, "СОР №1", c.AssessmentRows[0].Label)
	assert.Equal(t, "СОЧ", c.AssessmentRows[1].Label)
	assert.Contains(t, c.HeaderRows, 0)
}

func TestClassify_NoAssessmentRows(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.csv", [][]string{{"ФИО", "Класс"}, {"Сорокина", "7А"}})
	c := NewRowClassifier(nil, 3).Classify(g)
	assert.Empty(t, c.AssessmentRows)
	assert.False(t, c.UsedFallback)
}

func TestClassify_LevelGroups(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"СОР №1", "25", "1"},
		{"Низкий", "Иванов", "nan", "Петров", "Сидоров", "Лишний"},
		{"", "", "Высокий уровень", "Ахметова", "None"},
	})

	c := NewRowClassifier(nil, 3).Classify(g)
	require.Len(t, c.LevelGroups, 2)

	assert.Equal(t, "Низкий", c.LevelGroups[0].Label)
	assert.Equal(t, "Иванов, Петров", c.LevelGroups[0].Names)
	assert.Equal(t, 1, c.LevelGroups[0].Row)
	assert.Equal(t, "a.xlsx", c.LevelGroups[0].Source)

	assert.Equal(t, "Высокий уровень", c.LevelGroups[1].Label)
	assert.Equal(t, "Ахметова", c.LevelGroups[1].Names)

	assert.Equal(t, []int{1, 2}, c.HeaderRows)
}

func TestClassify_HeaderWordsAreNotLevels(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"Работа", "Выполнили", "Не выполнили", "Средний балл", "Орташа көрсеткіш", "% качества", "% успеваемости"},
		{"СОР №1", "25", "2", "4.1", "4.1", "80", "100"},
		{"Низкий", "Иванов"},
	})

	c := NewRowClassifier(nil, 3).Classify(g)
	require.Len(t, c.LevelGroups, 1)
	assert.Equal(t, "Низкий", c.LevelGroups[0].Label)
	assert.Equal(t, "Иванов", c.LevelGroups[0].Names)
	assert.Equal(t, []int{0, 2}, c.HeaderRows)
}

func TestLexicon_IsLevelLabel(t *testing.T) {
	t.Parallel()

	lex := DefaultLexicon()
	for _, s := range []string{"Низкий", "ВЫСОКИЙ", "Высокий уровень", "Средний:", "Низкий (0-39%)", "Орта деңгей", "High", "low level"} {
		assert.True(t, lex.IsLevelLabel(s), s)
	}
	for _, s := range []string{"Средний балл", "Орташа көрсеткіш", "Highlights", "lower bound", "Уровень низкий?", "", "средн"} {
		assert.False(t, lex.IsLevelLabel(s), s)
	}
}

func TestClassify_LevelSpanIsClamped(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.csv", [][]string{
		{"Орта", "a", "b", "c", "d", "e", "f"},
	})

	wide := NewRowClassifier(nil, 9).Classify(g)
	require.Len(t, wide.LevelGroups, 1)
	assert.Equal(t, "a, b, c, d, e", wide.LevelGroups[0].Names)

	narrow := NewRowClassifier(nil, 1).Classify(g)
	assert.Equal(t, "a, b, c", narrow.LevelGroups[0].Names)
}

func TestLabels_HeaderBlockAboveFirstAssessment(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{
		{"Отчёт 7А"},
		{"Работа", "Выполнили", "Не выполнили", "% качества"},
		{"СОР №1", "25", "1", "80"},
	})
	c := NewRowClassifier(nil, 3).Classify(g)

	labels := Labels(g, c)
	require.Len(t, labels, 4)
	assert.Equal(t, "Отчёт 7А Работа", labels[0])
	assert.Equal(t, "Не выполнили", labels[2])
	assert.Equal(t, "% качества", labels[3])
}

func TestLabels_NoHeader(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.xlsx", [][]string{{"СОР №1", "90"}})
	assert.Nil(t, Labels(g, NewRowClassifier(nil, 3).Classify(g)))
}

func TestStudentHeader(t *testing.T) {
	t.Parallel()

	g := model.NewRawGrid("a.csv", [][]string{
		{"Журнал"},
		{"Оқушы", "Сынып", "Баға"},
		{"Айгерим", "7А", "5"},
	})

	row, labels, ok := StudentHeader(g, nil, 10)
	require.True(t, ok)
	assert.Equal(t, 1, row)
	assert.Equal(t, []string{"Оқушы", "Сынып", "Баға"}, labels)

	_, _, ok = StudentHeader(model.NewRawGrid("b.csv", [][]string{{"x", "1"}}), nil, 10)
	assert.False(t, ok)
}

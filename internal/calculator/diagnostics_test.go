package calculator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorlens/internal/model"
)

func TestQualityTier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		q    float64
		want Tier
	}{
		{0, TierCritical},
		{69.9, TierCritical},
		{70, TierWarning},
		{84.9, TierWarning},
		{85, TierGood},
		{100, TierGood},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QualityTier(tc.q), "q=%v", tc.q)
	}
}

func TestColors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ColorGreen, QualityColor(85))
	assert.Equal(t, ColorYellow, QualityColor(70))
	assert.Equal(t, ColorRed, QualityColor(69.9))

	assert.Equal(t, ColorGreen, PassColor(90))
	assert.Equal(t, ColorOrange, PassColor(89.9))
	assert.Equal(t, ColorOrange, PassColor(70))
	assert.Equal(t, ColorRed, PassColor(10))
}

func TestDiagnoseEntries(t *testing.T) {
	t.Parallel()

	lines := DiagnoseEntries([]model.AssessmentEntry{
		{Work: "СОР №1", QualityPct: 90},
		{Work: "СОР №2", QualityPct: 75},
		{Work: "СОЧ №1", QualityPct: 60},
	})

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "высокий уровень (90%)")
	assert.Contains(t, lines[1], "средние результаты (75%)")
	assert.Contains(t, lines[2], "СОЧ №1: низкое качество (60%)")
}

func TestDiagnoseGroups_RemediationAndCorrective(t *testing.T) {
	t.Parallel()

	lines := DiagnoseGroups([]model.GroupMetrics{
		{Group: "7A", Total: 4, Fours: 1, Twos: 2, QualityPct: 25, PassPct: 50},
		{Group: "7B", Total: 2, Fives: 2, QualityPct: 100, PassPct: 100},
	})

	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Класс 7A: низкое качество")
	assert.Contains(t, lines[1], "ниже 50%")
	assert.Contains(t, lines[2], "«2»: 2")
	assert.True(t, strings.HasPrefix(lines[3], "✅ Класс 7B"))
}

func TestOverview(t *testing.T) {
	t.Parallel()

	groups := Overview(&model.BatchReport{
		TotalFiles: 2, ImportedFiles: 1, SkippedFiles: 1,
		Entries: []model.AssessmentEntry{{QualityPct: 90, PassPct: 100}, {QualityPct: 60, PassPct: 95}},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, 2.0, groups[0].Indicators[0].Value)
	assert.Equal(t, 75.0, groups[1].Indicators[1].Value)
	assert.Equal(t, 97.5, groups[1].Indicators[2].Value)
}

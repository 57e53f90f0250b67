package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sorlens/internal/model"
)

func sampleReport() *model.BatchReport {
	return &model.BatchReport{
		RunID:         "run-1",
		TotalFiles:    3,
		ImportedFiles: 2,
		SkippedFiles:  1,
		Entries: []model.AssessmentEntry{
			{Work: "СОР №1", Completed: 25, NotCompleted: 1, QualityPct: 90, PassPct: 100, Source: "a.xlsx"},
			{Work: "СОЧ №1", Completed: 24, NotCompleted: 2, QualityPct: 60, PassPct: 80, Source: "a.xlsx"},
		},
		Metrics: []model.GroupMetrics{
			{Group: "7А", Total: 3, Fives: 1, Fours: 1, Twos: 1, QualityPct: 66.7, PassPct: 66.7},
		},
		LevelGroups: []model.LevelGroup{{Label: "Низкий", Names: "Иванов, Петров", Row: 4, Source: "a.xlsx"}},
		Diagnostics: []string{"✅ СОР №1: высокий уровень (90%)."},
		SkipReasons: []model.SkipReason{{File: "b.csv", Kind: model.SkipUnresolvedRole, Role: "class", Message: "нет столбца"}},
	}
}

// findRow 第一个 A 列等于 text 的行（1 起始）
func findRow(t *testing.T, f *excelize.File, sheet, text string) int {
	t.Helper()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	for i, r := range rows {
		if len(r) > 0 && r[0] == text {
			return i + 1
		}
	}
	t.Fatalf("row %q not found in %s", text, sheet)
	return 0
}

func styleID(t *testing.T, f *excelize.File, sheet, ref string) int {
	t.Helper()
	id, err := f.GetCellStyle(sheet, ref)
	require.NoError(t, err)
	return id
}

func TestExport_Sheets(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(Options{Title: "Отчёт 7А", Font: "Arial"}).Export(sampleReport(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{SheetSummary, SheetCharts, SheetDiagnostics, SheetLevels, SheetSkipped}, f.GetSheetList())

	title, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Отчёт 7А", title)

	font, err := f.GetDefaultFont()
	require.NoError(t, err)
	assert.Equal(t, "Arial", font)
}

func TestExport_SummaryColors(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(Options{Font: "Arial"}).Export(sampleReport(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	first := findRow(t, f, SheetSummary, "СОР №1")
	v, err := f.GetCellValue(SheetSummary, cell(4, first), excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "90", v)

	green := styleID(t, f, SheetSummary, cell(4, first))
	red := styleID(t, f, SheetSummary, cell(4, first+1))
	orange := styleID(t, f, SheetSummary, cell(5, first+1))
	assert.NotEqual(t, green, red)
	assert.NotEqual(t, orange, red)
	assert.Equal(t, green, styleID(t, f, SheetSummary, cell(5, first)), "pass 100% is green")

	group := findRow(t, f, SheetSummary, "7А")
	assert.Equal(t, red, styleID(t, f, SheetSummary, cell(7, group)))
	assert.Equal(t, red, styleID(t, f, SheetSummary, cell(8, group)))
}

func TestExport_ChartBands(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(Options{Font: "Arial"}).Export(sampleReport(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	row := findRow(t, f, SheetCharts, "СОР №1")
	green, err := f.GetCellValue(SheetCharts, cell(2, row))
	require.NoError(t, err)
	red, err := f.GetCellValue(SheetCharts, cell(4, row))
	require.NoError(t, err)
	assert.Equal(t, "90", green)
	assert.Empty(t, red)

	row2 := findRow(t, f, SheetCharts, "СОЧ №1")
	red, err = f.GetCellValue(SheetCharts, cell(4, row2))
	require.NoError(t, err)
	assert.Equal(t, "60", red)

	findRow(t, f, SheetCharts, "7А")
}

func TestExport_MinimalReportAndProgress(t *testing.T) {
	t.Parallel()

	var stages []string
	var last int
	f, err := NewExporter(Options{}).Export(&model.BatchReport{RunID: "x"}, func(e ProgressEvent) {
		stages = append(stages, e.Stage)
		assert.GreaterOrEqual(t, e.Percent, last)
		last = e.Percent
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{SheetSummary, SheetDiagnostics}, f.GetSheetList())
	assert.Equal(t, 100, last)
	assert.Equal(t, StageDone, stages[len(stages)-1])
}

func TestNewExporter_FontFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FallbackFont, NewExporter(Options{Font: "  "}).Font())
	assert.Equal(t, "PT Sans", NewExporter(Options{Font: "PT Sans"}).Font())
}

func TestExport_NilReport(t *testing.T) {
	t.Parallel()

	_, err := NewExporter(Options{}).Export(nil, nil)
	assert.Error(t, err)
}

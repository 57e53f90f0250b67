package exporter

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sorlens/internal/calculator"
	"sorlens/internal/model"
)

// FallbackFont 未配置字体时使用的内置字体
const FallbackFont = "Calibri"

// 报告工作表
const (
	SheetSummary     = "Сводка"
	SheetCharts      = "Диаграммы"
	SheetDiagnostics = "Диагностика"
	SheetLevels      = "Уровни"
	SheetSkipped     = "Пропущенные файлы"
)

// Options 报告选项
type Options struct {
	Title string
	Font  string
}

// Exporter 分析报告导出器（XLSX：汇总表、彩色柱状图、诊断、层级名单、跳过原因）
type Exporter struct {
	opts   Options
	logger *zap.Logger
}

// NewExporter 创建导出器；字体为空时回退到 FallbackFont
func NewExporter(opts Options) *Exporter {
	logger := zap.L().Named("exporter")
	opts.Font = strings.TrimSpace(opts.Font)
	if opts.Font == "" {
		logger.Warn("report font not configured, falling back", zap.String("font", FallbackFont))
		opts.Font = FallbackFont
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "Анализ результатов СОР и СОЧ"
	}
	return &Exporter{opts: opts, logger: logger}
}

// Font 实际使用的字体
func (e *Exporter) Font() string { return e.opts.Font }

// Export 由分析结果生成报告工作簿，调用方负责 Close
func (e *Exporter) Export(report *model.BatchReport, progress func(ProgressEvent)) (*excelize.File, error) {
	if report == nil {
		return nil, eris.New("exporter: nil report")
	}

	f := excelize.NewFile()
	if err := e.fill(f, report, progress); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, StageDone)
	e.logger.Debug("report exported",
		zap.String("run_id", report.RunID),
		zap.Strings("sheets", f.GetSheetList()),
	)
	return f, nil
}

func (e *Exporter) fill(f *excelize.File, report *model.BatchReport, progress func(ProgressEvent)) error {
	if err := f.SetDefaultFont(e.opts.Font); err != nil {
		return eris.Wrapf(err, "exporter: set font %s", e.opts.Font)
	}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return eris.Wrap(err, "exporter: rename summary sheet")
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	reportSheet(progress, SheetSummary)
	if err := e.writeSummary(f, st, report); err != nil {
		return err
	}

	reportSheet(progress, SheetCharts)
	if err := writeCharts(f, st, report); err != nil {
		return err
	}

	reportSheet(progress, SheetDiagnostics)
	if err := writeDiagnostics(f, st, report.Diagnostics); err != nil {
		return err
	}

	reportSheet(progress, SheetLevels)
	if err := writeLevels(f, st, report.LevelGroups); err != nil {
		return err
	}

	reportSheet(progress, SheetSkipped)
	return writeSkipped(f, st, report.SkipReasons)
}

// writeSummary 标题、概览指标、评估表与分组表
func (e *Exporter) writeSummary(f *excelize.File, st *styles, report *model.BatchReport) error {
	sheet := SheetSummary
	if err := f.SetCellValue(sheet, "A1", e.opts.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return err
	}

	row := 3
	for _, g := range calculator.Overview(report) {
		if err := setRow(f, sheet, row, []any{g.Name}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), st.bold); err != nil {
			return err
		}
		row++
		for _, it := range g.Indicators {
			if err := setRow(f, sheet, row, []any{it.Name, it.Value, it.Unit}); err != nil {
				return err
			}
			row++
		}
	}
	row++

	if len(report.Entries) > 0 {
		if err := writeHeader(f, st, sheet, row, []string{"Работа", "Выполнили", "Не выполнили", "% качества", "% успеваемости", "Файл"}); err != nil {
			return err
		}
		row++
		for _, en := range report.Entries {
			if err := setRow(f, sheet, row, []any{en.Work, en.Completed, en.NotCompleted, en.QualityPct, en.PassPct, en.Source}); err != nil {
				return err
			}
			if err := st.colorCell(f, sheet, cell(4, row), calculator.QualityColor(en.QualityPct)); err != nil {
				return err
			}
			if err := st.colorCell(f, sheet, cell(5, row), calculator.PassColor(en.PassPct)); err != nil {
				return err
			}
			row++
		}
		row++
	}

	if len(report.Metrics) > 0 {
		if err := writeHeader(f, st, sheet, row, []string{"Класс", "Всего", "«5»", "«4»", "«3»", "«2»", "% качества", "% успеваемости"}); err != nil {
			return err
		}
		row++
		for _, m := range report.Metrics {
			if err := setRow(f, sheet, row, []any{m.Group, m.Total, m.Fives, m.Fours, m.Threes, m.Twos, m.QualityPct, m.PassPct}); err != nil {
				return err
			}
			if err := st.colorCell(f, sheet, cell(7, row), calculator.QualityColor(m.QualityPct)); err != nil {
				return err
			}
			if err := st.colorCell(f, sheet, cell(8, row), calculator.PassColor(m.PassPct)); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "H", 16)
}

func writeDiagnostics(f *excelize.File, st *styles, lines []string) error {
	if _, err := f.NewSheet(SheetDiagnostics); err != nil {
		return eris.Wrap(err, "exporter: create diagnostics sheet")
	}
	if err := writeHeader(f, st, SheetDiagnostics, 1, []string{"AI-диагностика"}); err != nil {
		return err
	}
	for i, line := range lines {
		if err := f.SetCellValue(SheetDiagnostics, cell(1, i+2), line); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetDiagnostics, "A", "A", 110)
}

func writeLevels(f *excelize.File, st *styles, groups []model.LevelGroup) error {
	if len(groups) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetLevels); err != nil {
		return eris.Wrap(err, "exporter: create levels sheet")
	}
	if err := writeHeader(f, st, SheetLevels, 1, []string{"Уровень", "Ученики", "Файл", "Строка"}); err != nil {
		return err
	}
	for i, g := range groups {
		if err := setRow(f, SheetLevels, i+2, []any{g.Label, g.Names, g.Source, g.Row + 1}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetLevels, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(SheetLevels, "B", "B", 70)
}

func writeSkipped(f *excelize.File, st *styles, reasons []model.SkipReason) error {
	if len(reasons) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetSkipped); err != nil {
		return eris.Wrap(err, "exporter: create skipped sheet")
	}
	if err := writeHeader(f, st, SheetSkipped, 1, []string{"Файл", "Причина", "Столбец", "Описание"}); err != nil {
		return err
	}
	for i, r := range reasons {
		if err := setRow(f, SheetSkipped, i+2, []any{r.File, string(r.Kind), r.Role, r.Message}); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSkipped, "A", "D", 30)
}

func writeHeader(f *excelize.File, st *styles, sheet string, row int, titles []string) error {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := setRow(f, sheet, row, values); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, row), cell(len(titles), row), st.header)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return eris.Wrapf(err, "exporter: write %s row %d", sheet, row)
	}
	return nil
}

// cell 1 起始的列号与行号转单元格名
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("exporter: invalid cell %d,%d", col, row))
	}
	return name
}

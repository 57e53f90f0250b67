package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"sorlens/internal/model"
	"sorlens/internal/store"
	"sorlens/internal/util"
)

// formatReport 以表格形式打印分析结果
func formatReport(w io.Writer, report *model.BatchReport) {
	if len(report.Entries) > 0 {
		formatEntries(w, report.Entries)
	}
	if len(report.Metrics) > 0 {
		formatMetrics(w, report.Metrics)
	}
	if len(report.LevelGroups) > 0 {
		formatLevelGroups(w, report.LevelGroups)
	}
	if len(report.SkipReasons) > 0 {
		formatSkipReasons(w, report.SkipReasons)
	}
	for _, line := range report.Diagnostics {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nФайлов: %d, обработано: %d, пропущено: %d\n",
		report.TotalFiles, report.ImportedFiles, report.SkippedFiles)
}

func formatEntries(w io.Writer, entries []model.AssessmentEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Работа", "Выполнили", "Не выполнили", "Качество", "Успеваемость", "Файл"})
	for _, e := range entries {
		table.Append([]string{
			e.Work,
			util.FormatCount(e.Completed),
			util.FormatCount(e.NotCompleted),
			util.FormatPercent(e.QualityPct),
			util.FormatPercent(e.PassPct),
			e.Source,
		})
	}
	table.Render()
}

func formatMetrics(w io.Writer, metrics []model.GroupMetrics) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Класс", "Всего", "5", "4", "3", "2", "Качество", "Успеваемость"})
	for _, m := range metrics {
		table.Append([]string{
			m.Group,
			strconv.Itoa(m.Total),
			strconv.Itoa(m.Fives),
			strconv.Itoa(m.Fours),
			strconv.Itoa(m.Threes),
			strconv.Itoa(m.Twos),
			util.FormatPercent(m.QualityPct),
			util.FormatPercent(m.PassPct),
		})
	}
	table.Render()
}

func formatLevelGroups(w io.Writer, groups []model.LevelGroup) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Уровень", "Ученики", "Файл"})
	for _, g := range groups {
		table.Append([]string{g.Label, g.Names, g.Source})
	}
	table.Render()
}

func formatSkipReasons(w io.Writer, reasons []model.SkipReason) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Файл", "Причина", "Столбец"})
	for _, r := range reasons {
		table.Append([]string{r.File, r.Message, r.Role})
	}
	table.Render()
}

func formatRunsList(w io.Writer, runs []store.Run) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Режим", "Статус", "Файлы", "Обработано", "Пропущено", "Начало", "Длительность"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.Mode,
			r.Status,
			strconv.Itoa(r.TotalFiles),
			strconv.Itoa(r.ImportedFiles),
			strconv.Itoa(r.SkippedFiles),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d ms", r.DurationMs),
		})
	}
	table.Render()
}

func formatRunFiles(w io.Writer, files []store.RunFile) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Файл", "Режим", "Статус", "Работы", "Записи", "Причина"})
	for _, f := range files {
		table.Append([]string{
			f.File,
			f.Mode,
			f.Status,
			strconv.Itoa(f.Entries),
			strconv.Itoa(f.Records),
			f.SkipMessage,
		})
	}
	table.Render()
}

func formatRunDays(w io.Writer, days []store.DayStat) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"День", "Запуски", "С ошибкой", "Обработано", "Пропущено"})
	for _, d := range days {
		table.Append([]string{
			d.Day,
			strconv.Itoa(d.Runs),
			strconv.Itoa(d.FailedRuns),
			strconv.Itoa(d.ImportedFiles),
			strconv.Itoa(d.SkippedFiles),
		})
	}
	table.Render()
}

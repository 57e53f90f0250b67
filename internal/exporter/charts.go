package exporter

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"sorlens/internal/calculator"
	"sorlens/internal/model"
)

// chartBand 一个颜色区间，对应图表中的一个系列
type chartBand struct {
	name  string
	color string
}

var (
	qualityBands = []chartBand{
		{name: "≥ 85%", color: calculator.ColorGreen},
		{name: "70-84%", color: calculator.ColorYellow},
		{name: "< 70%", color: calculator.ColorRed},
	}
	passBands = []chartBand{
		{name: "≥ 90%", color: calculator.ColorGreen},
		{name: "70-89%", color: calculator.ColorOrange},
		{name: "< 70%", color: calculator.ColorRed},
	}
)

// chartData 一组共享类别轴的质量/及格数据
type chartData struct {
	title      string
	categories []string
	quality    []float64
	pass       []float64
}

func chartDatasets(report *model.BatchReport) []chartData {
	var out []chartData
	if len(report.Entries) > 0 {
		d := chartData{title: "Работы"}
		for _, e := range report.Entries {
			d.categories = append(d.categories, e.Work)
			d.quality = append(d.quality, e.QualityPct)
			d.pass = append(d.pass, e.PassPct)
		}
		out = append(out, d)
	}
	if len(report.Metrics) > 0 {
		d := chartData{title: "Классы"}
		for _, m := range report.Metrics {
			d.categories = append(d.categories, m.Group)
			d.quality = append(d.quality, m.QualityPct)
			d.pass = append(d.pass, m.PassPct)
		}
		out = append(out, d)
	}
	return out
}

// writeCharts 每个数据集写一个数据块（类别 + 各颜色区间一列）和两张堆积柱状图
//
// 每个类别只在其所属区间的列中有值，堆积后柱子即按阈值着色。
func writeCharts(f *excelize.File, st *styles, report *model.BatchReport) error {
	datasets := chartDatasets(report)
	if len(datasets) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetCharts); err != nil {
		return eris.Wrap(err, "exporter: create charts sheet")
	}

	top := 1
	for _, d := range datasets {
		qualityCols, err := writeBandBlock(f, st, top, 1, d.title+": % качества", d.categories, d.quality, qualityBands, calculator.QualityColor)
		if err != nil {
			return err
		}
		passCols, err := writeBandBlock(f, st, top, 6, d.title+": % успеваемости", d.categories, d.pass, passBands, calculator.PassColor)
		if err != nil {
			return err
		}

		if err := addBandChart(f, cell(11, top), d.title+": % качества", top, len(d.categories), 1, qualityCols, qualityBands); err != nil {
			return err
		}
		if err := addBandChart(f, cell(11, top+18), d.title+": % успеваемости", top, len(d.categories), 6, passCols, passBands); err != nil {
			return err
		}

		height := len(d.categories) + 3
		if height < 38 {
			height = 38
		}
		top += height
	}

	return f.SetColWidth(SheetCharts, "A", "A", 24)
}

// writeBandBlock 在 (top, left) 写入标题行 + 数据，返回各区间所在列
func writeBandBlock(f *excelize.File, st *styles, top, left int, title string, categories []string, values []float64, bands []chartBand, colorOf func(float64) string) ([]int, error) {
	header := []any{title}
	cols := make([]int, len(bands))
	for i, b := range bands {
		header = append(header, b.name)
		cols[i] = left + 1 + i
	}
	if err := f.SetSheetRow(SheetCharts, cell(left, top), &header); err != nil {
		return nil, eris.Wrap(err, "exporter: chart header")
	}
	if err := f.SetCellStyle(SheetCharts, cell(left, top), cell(left+len(bands), top), st.header); err != nil {
		return nil, err
	}

	for i, c := range categories {
		row := top + 1 + i
		if err := f.SetCellValue(SheetCharts, cell(left, row), c); err != nil {
			return nil, err
		}
		color := colorOf(values[i])
		for j, b := range bands {
			if b.color != color {
				continue
			}
			if err := f.SetCellValue(SheetCharts, cell(cols[j], row), values[i]); err != nil {
				return nil, err
			}
		}
	}
	return cols, nil
}

func addBandChart(f *excelize.File, anchor, title string, top, n, catCol int, cols []int, bands []chartBand) error {
	minY, maxY := 0.0, 100.0
	first, last := top+1, top+n

	series := make([]excelize.ChartSeries, len(bands))
	for i, b := range bands {
		series[i] = excelize.ChartSeries{
			Name:       absRef(cols[i], top, cols[i], top),
			Categories: absRef(catCol, first, catCol, last),
			Values:     absRef(cols[i], first, cols[i], last),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{b.color}, Pattern: 1},
		}
	}

	err := f.AddChart(SheetCharts, anchor, &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		YAxis: excelize.ChartAxis{
			Minimum:        &minY,
			Maximum:        &maxY,
			MajorGridLines: true,
		},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
		},
		ShowBlanksAs: "gap",
		Dimension:    excelize.ChartDimension{Width: 640, Height: 340},
	})
	if err != nil {
		return eris.Wrapf(err, "exporter: add chart %q", title)
	}
	return nil
}

// absRef 图表数据引用，如 'Диаграммы'!$B$2:$B$5
func absRef(c1, r1, c2, r2 int) string {
	from, _ := excelize.CoordinatesToCellName(c1, r1, true)
	if c1 == c2 && r1 == r2 {
		return fmt.Sprintf("'%s'!%s", SheetCharts, from)
	}
	to, _ := excelize.CoordinatesToCellName(c2, r2, true)
	return fmt.Sprintf("'%s'!%s:%s", SheetCharts, from, to)
}

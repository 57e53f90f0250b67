package exporter

// ProgressEvent 报告生成进度，Stage 为正在写入的工作表名或 StageDone
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// StageDone 工作簿已生成
const StageDone = "done"

// sheetPercent 开始写入各工作表时的进度
var sheetPercent = map[string]int{
	SheetSummary:     10,
	SheetCharts:      40,
	SheetDiagnostics: 70,
	SheetLevels:      80,
	SheetSkipped:     90,
}

func reportSheet(progress func(ProgressEvent), sheet string) {
	reportProgress(progress, sheetPercent[sheet], sheet)
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Percent: min(max(percent, 0), 100),
		Stage:   stage,
	})
}

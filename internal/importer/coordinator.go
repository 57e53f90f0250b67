package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sorlens/internal/calculator"
	"sorlens/internal/grid"
	"sorlens/internal/model"
	"sorlens/internal/parser"
)

// 进度事件类型
const (
	EventStart       = "start"
	EventFileStart   = "file_start"
	EventFileDone    = "file_done"
	EventFileSkipped = "file_skipped"
	EventDone        = "done"
)

// DefaultHeaderScan 学生明细表在前多少行内查找表头
const DefaultHeaderScan = 10

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"`      // start/file_start/file_done/file_skipped/done
	Message   string    `json:"message"`   // 事件消息
	Data      any       `json:"data"`      // 附加数据
	Timestamp time.Time `json:"timestamp"` // 时间戳
}

// RunRecorder 批次运行记录（导入日志），可为 nil
type RunRecorder interface {
	CreateRun(runID string, mode model.ImportMode, totalFiles int, startedAt time.Time) error
	AddFileResult(runID string, result model.FileResult) error
	FinishRun(report *model.BatchReport, runErr error) error
}

// Options 分析选项
type Options struct {
	Mode       model.ImportMode
	Workers    int // <= 1 时顺序处理
	LevelSpan  int
	HeaderScan int
	Lexicon    *parser.Lexicon
	OnProgress func(ProgressEvent)
}

// Coordinator 批量分析协调器
//
// 每个文件独立处理，单个文件失败只会被记为跳过原因；结果按输入顺序合并。
type Coordinator struct {
	opts       Options
	recorder   RunRecorder
	loader     *grid.Loader
	classifier *parser.RowClassifier
	resolver   *parser.Resolver
	builder    *Builder
	logger     *zap.Logger

	progressMu sync.Mutex
}

// NewCoordinator 创建协调器
func NewCoordinator(opts Options, recorder RunRecorder) *Coordinator {
	if !opts.Mode.Valid() {
		opts.Mode = model.ModeAuto
	}
	if opts.Lexicon == nil {
		opts.Lexicon = parser.DefaultLexicon()
	}
	if opts.LevelSpan == 0 {
		opts.LevelSpan = parser.DefaultLevelSpan
	}
	if opts.HeaderScan <= 0 {
		opts.HeaderScan = DefaultHeaderScan
	}
	return &Coordinator{
		opts:       opts,
		recorder:   recorder,
		loader:     grid.NewLoader(),
		classifier: parser.NewRowClassifier(opts.Lexicon, opts.LevelSpan),
		resolver:   parser.DefaultResolver(opts.Lexicon),
		builder:    NewBuilder(opts.Lexicon),
		logger:     zap.L().Named("importer"),
	}
}

// FileOutcome 单个文件的处理结果；Err 非 nil 时文件被跳过，原因在 Result.Skip
type FileOutcome struct {
	Result      model.FileResult
	Entries     []model.AssessmentEntry
	Records     []model.StudentRecord
	LevelGroups []model.LevelGroup
	Err         error
}

// Run 处理一批来源并汇总
//
// 只有两种情况返回错误：单文件且未找到评估行（ErrNoAssessmentRows），
// 或没有任何可用文件（*BatchError）。两种情况下 report 仍然有效。
func (c *Coordinator) Run(ctx context.Context, sources []Source) (*model.BatchReport, error) {
	startTime := time.Now()
	report := &model.BatchReport{
		RunID:       uuid.NewString(),
		Mode:        c.opts.Mode,
		TotalFiles:  len(sources),
		Files:       []model.FileResult{},
		SkipReasons: []model.SkipReason{},
		StartedAt:   startTime,
	}

	if c.recorder != nil {
		if err := c.recorder.CreateRun(report.RunID, report.Mode, report.TotalFiles, startTime); err != nil {
			c.logger.Warn("create run record failed", zap.String("run_id", report.RunID), zap.Error(err))
		}
	}

	c.sendProgress(ProgressEvent{
		Type:    EventStart,
		Message: fmt.Sprintf("Начат анализ: файлов %d", len(sources)),
		Data: map[string]any{
			"run_id":      report.RunID,
			"total_files": len(sources),
		},
	})

	outcomes, err := c.processAll(ctx, sources)
	if err != nil {
		err = eris.Wrap(err, "analysis cancelled")
		report.Duration = time.Since(startTime)
		c.finishRun(report, err)
		batchesTotal.WithLabelValues("cancelled").Inc()
		return report, err
	}

	for _, o := range outcomes {
		c.recordFileResult(report, o)
	}

	report.Metrics = calculator.Aggregate(report.Records)
	report.Diagnostics = append(calculator.DiagnoseEntries(report.Entries), calculator.DiagnoseGroups(report.Metrics)...)
	report.Duration = time.Since(startTime)

	var runErr error
	switch {
	case len(outcomes) == 1 && outcomes[0].Err != nil && eris.Is(outcomes[0].Err, ErrNoAssessmentRows):
		runErr = outcomes[0].Err
	case report.ImportedFiles == 0:
		runErr = &BatchError{Reasons: report.SkipReasons}
	}
	c.finishRun(report, runErr)

	outcome := "ok"
	if runErr != nil {
		outcome = "failed"
	}
	batchesTotal.WithLabelValues(outcome).Inc()

	c.logger.Info("analysis finished",
		zap.String("run_id", report.RunID),
		zap.String("mode", string(report.Mode)),
		zap.Int("files", report.TotalFiles),
		zap.Int("imported", report.ImportedFiles),
		zap.Int("skipped", report.SkippedFiles),
		zap.Int("entries", len(report.Entries)),
		zap.Int("records", len(report.Records)),
		zap.Duration("duration", report.Duration),
		zap.Error(runErr),
	)

	c.sendProgress(ProgressEvent{
		Type:    EventDone,
		Message: "Анализ завершён",
		Data:    report,
	})

	return report, runErr
}

// processAll 顺序或并行处理所有来源，结果与输入顺序一致
func (c *Coordinator) processAll(ctx context.Context, sources []Source) ([]FileOutcome, error) {
	outcomes := make([]FileOutcome, len(sources))

	if c.opts.Workers <= 1 {
		for i, src := range sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = c.processSource(ctx, src)
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = c.processSource(gctx, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// processSource 处理单个来源并发送进度、记录指标
func (c *Coordinator) processSource(ctx context.Context, src Source) FileOutcome {
	c.sendProgress(ProgressEvent{
		Type:    EventFileStart,
		Message: fmt.Sprintf("Обработка файла: %s", src.Name),
		Data:    map[string]string{"file": src.Name},
	})

	o := c.ProcessFile(ctx, src)
	r := o.Result

	fileDuration.Observe(r.Duration.Seconds())
	filesProcessed.WithLabelValues(string(r.Mode), r.Status).Inc()

	if o.Err != nil {
		filesSkipped.WithLabelValues(string(r.Skip.Kind)).Inc()
		c.logger.Warn("file skipped",
			zap.String("file", r.File),
			zap.String("mode", string(r.Mode)),
			zap.String("kind", string(r.Skip.Kind)),
			zap.String("role", r.Skip.Role),
			zap.Error(o.Err),
		)
		c.sendProgress(ProgressEvent{
			Type:    EventFileSkipped,
			Message: r.Skip.String(),
			Data:    r,
		})
		return o
	}

	c.logger.Info("file imported",
		zap.String("file", r.File),
		zap.String("sheet", r.Sheet),
		zap.String("mode", string(r.Mode)),
		zap.Int("entries", r.Entries),
		zap.Int("records", r.Records),
		zap.Int("level_groups", r.LevelGroups),
		zap.Int("rows_dropped", r.RowsDropped),
		zap.Int("marks_missing", r.MarksMissing),
		zap.Bool("used_fallback", r.UsedFallback),
	)
	c.sendProgress(ProgressEvent{
		Type:    EventFileDone,
		Message: fmt.Sprintf("Файл %s обработан", r.File),
		Data:    r,
	})
	return o
}

// ProcessFile 处理单个来源；不会 panic，也不会返回 Run 级错误
func (c *Coordinator) ProcessFile(ctx context.Context, src Source) (out FileOutcome) {
	startTime := time.Now()
	out.Result = model.FileResult{File: src.Name, Mode: c.opts.Mode}

	defer func() {
		if r := recover(); r != nil {
			out = skip(out, eris.Wrapf(ErrFileRead, "%s: panic: %v", src.Name, r), model.SkipReason{
				Kind:    model.SkipFileRead,
				Message: fmt.Sprintf("внутренняя ошибка обработки: %v", r),
			})
		}
		out.Result.Duration = time.Since(startTime)
	}()

	if err := ctx.Err(); err != nil {
		return skip(out, eris.Wrapf(ErrFileRead, "%s: %v", src.Name, err), model.SkipReason{
			Kind:    model.SkipFileRead,
			Message: "анализ отменён",
		})
	}

	g, err := c.load(src)
	if err != nil {
		message := "не удалось прочитать файл: " + eris.Cause(err).Error()
		if eris.Is(err, grid.ErrUnsupportedFormat) {
			message = "неподдерживаемый формат файла, сохраните его как .xlsx или .csv"
		}
		return skip(out, eris.Wrapf(ErrFileRead, "%s: %v", src.Name, err), model.SkipReason{
			Kind:    model.SkipFileRead,
			Message: message,
		})
	}
	out.Result.Sheet = g.Sheet()

	cls := c.classifier.Classify(g)
	out.Result.UsedFallback = cls.UsedFallback

	mode := c.opts.Mode
	if mode == model.ModeAuto {
		mode = model.ModeStudent
		if len(cls.AssessmentRows) > 0 {
			mode = model.ModeAggregate
		}
	}
	out.Result.Mode = mode

	if mode == model.ModeAggregate {
		return c.processAggregate(out, g, cls)
	}
	return c.processStudents(out, g)
}

func (c *Coordinator) load(src Source) (*model.RawGrid, error) {
	if src.Open == nil {
		return nil, eris.Errorf("source %q has no reader", src.Name)
	}
	rc, err := src.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", src.Name)
	}
	defer rc.Close()
	return c.loader.Load(src.Name, rc)
}

// processAggregate 汇总表：每个评估行一条记录
func (c *Coordinator) processAggregate(out FileOutcome, g *model.RawGrid, cls parser.Classification) FileOutcome {
	if len(cls.AssessmentRows) == 0 {
		return skip(out, eris.Wrapf(ErrNoAssessmentRows, "%s", out.Result.File), model.SkipReason{
			Kind:    model.SkipNoAssessmentRows,
			Message: "не найдено ни одной строки СОР/СОЧ",
		})
	}

	in := parser.ResolveInput{Grid: g, Labels: parser.Labels(g, cls), Rows: cls.AssessmentIndexes()}
	mapping := c.resolver.Resolve(in, model.AggregateRoles)

	out.Entries = c.builder.BuildEntries(g, mapping, cls.AssessmentRows)
	out.LevelGroups = cls.LevelGroups

	out.Result.Status = model.StatusImported
	out.Result.Mapping = mapping
	out.Result.Entries = len(out.Entries)
	out.Result.LevelGroups = len(out.LevelGroups)
	return out
}

// processStudents 学生明细：每个数据行一条记录，班级列与分数列必须能解析
func (c *Coordinator) processStudents(out FileOutcome, g *model.RawGrid) FileOutcome {
	header, labels, ok := parser.StudentHeader(g, c.opts.Lexicon, c.opts.HeaderScan)
	first := 0
	if ok {
		first = header + 1
	}
	rows := make([]int, 0, g.NumRows())
	for i := first; i < g.NumRows(); i++ {
		rows = append(rows, i)
	}

	in := parser.ResolveInput{Grid: g, Labels: labels, Rows: rows}
	mapping := c.resolver.Resolve(in, model.StudentRoles)
	out.Result.Mapping = mapping

	for _, role := range []model.ColumnRole{model.RoleClass, model.RoleMark} {
		if !mapping.Has(role) {
			return skip(out, eris.Wrapf(ErrUnresolvedColumnRole, "%s: %s", out.Result.File, role), model.SkipReason{
				Kind:    model.SkipUnresolvedRole,
				Role:    role.String(),
				Message: fmt.Sprintf("не удалось определить столбец %q", role.String()),
			})
		}
	}

	records, stats := c.builder.BuildRecords(g, mapping, rows)
	out.Records = records

	out.Result.Status = model.StatusImported
	out.Result.Records = stats.Built
	out.Result.RowsDropped = stats.Dropped
	out.Result.MarksMissing = stats.MarksMissing
	return out
}

// skip 把结果标记为跳过并清空已构建的数据
func skip(out FileOutcome, err error, reason model.SkipReason) FileOutcome {
	reason.File = out.Result.File
	out.Result.Status = model.StatusSkipped
	out.Result.Skip = &reason
	out.Result.Entries, out.Result.Records, out.Result.LevelGroups = 0, 0, 0
	out.Entries, out.Records, out.LevelGroups = nil, nil, nil
	out.Err = err
	return out
}

// recordFileResult 合并单个文件的结果
func (c *Coordinator) recordFileResult(report *model.BatchReport, o FileOutcome) {
	report.Files = append(report.Files, o.Result)

	if o.Result.Status == model.StatusImported {
		report.ImportedFiles++
		report.Entries = append(report.Entries, o.Entries...)
		report.Records = append(report.Records, o.Records...)
		report.LevelGroups = append(report.LevelGroups, o.LevelGroups...)
	} else {
		report.SkippedFiles++
		if o.Result.Skip != nil {
			report.SkipReasons = append(report.SkipReasons, *o.Result.Skip)
		}
	}

	if c.recorder != nil {
		if err := c.recorder.AddFileResult(report.RunID, o.Result); err != nil {
			c.logger.Warn("add file record failed", zap.String("file", o.Result.File), zap.Error(err))
		}
	}
}

func (c *Coordinator) finishRun(report *model.BatchReport, runErr error) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.FinishRun(report, runErr); err != nil {
		c.logger.Warn("finish run record failed", zap.String("run_id", report.RunID), zap.Error(err))
	}
}

// sendProgress 发送进度事件（并行处理时串行化回调）
func (c *Coordinator) sendProgress(event ProgressEvent) {
	if c.opts.OnProgress == nil {
		return
	}
	event.Timestamp = time.Now()
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	c.opts.OnProgress(event)
}

package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"sorlens/internal/model"
)

// 运行状态
const (
	RunProcessing = "processing"
	RunCompleted  = "completed"
	RunFailed     = "failed"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = eris.New("run not found")

// Run 一次批量分析的运行记录
type Run struct {
	ID            string     `json:"id"`
	Mode          string     `json:"mode"`
	Status        string     `json:"status"`
	TotalFiles    int        `json:"totalFiles"`
	ImportedFiles int        `json:"importedFiles"`
	SkippedFiles  int        `json:"skippedFiles"`
	Entries       int        `json:"entries"`
	Records       int        `json:"records"`
	Groups        int        `json:"groups"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	DurationMs    int64      `json:"durationMs"`
}

// RunFile 运行中单个文件的结果
type RunFile struct {
	File         string          `json:"file"`
	Sheet        string          `json:"sheet,omitempty"`
	Mode         string          `json:"mode"`
	Status       string          `json:"status"`
	Entries      int             `json:"entries"`
	Records      int             `json:"records"`
	LevelGroups  int             `json:"levelGroups"`
	RowsDropped  int             `json:"rowsDropped"`
	MarksMissing int             `json:"marksMissing"`
	UsedFallback bool            `json:"usedFallback"`
	SkipKind     string          `json:"skipKind,omitempty"`
	SkipRole     string          `json:"skipRole,omitempty"`
	SkipMessage  string          `json:"skipMessage,omitempty"`
	Mapping      json.RawMessage `json:"mapping,omitempty"`
	DurationMs   int64           `json:"durationMs"`
}

// RunDetail 运行记录及其文件明细
type RunDetail struct {
	Run
	Files []RunFile `json:"files"`
}

// CreateRun 创建运行记录
func (s *Store) CreateRun(runID string, mode model.ImportMode, totalFiles int, startedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO import_runs (id, mode, status, total_files, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, string(mode), RunProcessing, totalFiles, formatTime(startedAt))
	if err != nil {
		return eris.Wrapf(err, "failed to create run %s", runID)
	}
	return nil
}

// AddFileResult 记录单个文件结果
func (s *Store) AddFileResult(runID string, r model.FileResult) error {
	var mapping string
	if r.Mapping != nil {
		b, err := json.Marshal(r.Mapping)
		if err != nil {
			return eris.Wrap(err, "failed to encode column mapping")
		}
		mapping = string(b)
	}

	var kind, role, message string
	if r.Skip != nil {
		kind, role, message = string(r.Skip.Kind), r.Skip.Role, r.Skip.Message
	}

	_, err := s.db.Exec(`
		INSERT INTO import_files (
			run_id, file, sheet, mode, status, entries, records, level_groups,
			rows_dropped, marks_missing, used_fallback, skip_kind, skip_role,
			skip_message, mapping_json, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.File, r.Sheet, string(r.Mode), r.Status, r.Entries, r.Records, r.LevelGroups,
		r.RowsDropped, r.MarksMissing, r.UsedFallback, kind, role,
		message, mapping, r.Duration.Milliseconds())
	if err != nil {
		return eris.Wrapf(err, "failed to add file result %s", r.File)
	}
	return nil
}

// FinishRun 完成运行记录
func (s *Store) FinishRun(report *model.BatchReport, runErr error) error {
	status, message := RunCompleted, ""
	if runErr != nil {
		status, message = RunFailed, runErr.Error()
	}

	res, err := s.db.Exec(`
		UPDATE import_runs SET
			status = ?,
			imported_files = ?,
			skipped_files = ?,
			entries = ?,
			records = ?,
			groups_count = ?,
			error_message = ?,
			completed_at = ?,
			duration_ms = ?
		WHERE id = ?
	`, status, report.ImportedFiles, report.SkippedFiles, len(report.Entries), len(report.Records),
		len(report.Metrics), message, formatTime(time.Now()), report.Duration.Milliseconds(), report.RunID)
	if err != nil {
		return eris.Wrapf(err, "failed to finish run %s", report.RunID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrRunNotFound, "finish run %s", report.RunID)
	}
	return nil
}

// ListRuns 按开始时间倒序列出最近的运行记录
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, mode, status, total_files, imported_files, skipped_files,
		       entries, records, groups_count, error_message, started_at, completed_at, duration_ms
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "query runs failed")
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate runs failed")
	}
	return out, nil
}

// GetRun 查询单个运行记录及文件明细
func (s *Store) GetRun(runID string) (*RunDetail, error) {
	row := s.db.QueryRow(`
		SELECT id, mode, status, total_files, imported_files, skipped_files,
		       entries, records, groups_count, error_message, started_at, completed_at, duration_ms
		FROM import_runs
		WHERE id = ?
	`, runID)
	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Wrapf(ErrRunNotFound, "run %s", runID)
		}
		return nil, err
	}

	files, err := s.listRunFiles(runID)
	if err != nil {
		return nil, err
	}
	return &RunDetail{Run: r, Files: files}, nil
}

func (s *Store) listRunFiles(runID string) ([]RunFile, error) {
	rows, err := s.db.Query(`
		SELECT file, sheet, mode, status, entries, records, level_groups, rows_dropped,
		       marks_missing, used_fallback, skip_kind, skip_role, skip_message, mapping_json, duration_ms
		FROM import_files
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "query files of run %s failed", runID)
	}
	defer rows.Close()

	files := []RunFile{}
	for rows.Next() {
		var f RunFile
		var mapping string
		if err := rows.Scan(&f.File, &f.Sheet, &f.Mode, &f.Status, &f.Entries, &f.Records, &f.LevelGroups,
			&f.RowsDropped, &f.MarksMissing, &f.UsedFallback, &f.SkipKind, &f.SkipRole, &f.SkipMessage,
			&mapping, &f.DurationMs); err != nil {
			return nil, eris.Wrap(err, "scan run file failed")
		}
		if mapping != "" {
			f.Mapping = json.RawMessage(mapping)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate run files failed")
	}
	return files, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var started string
	var completed sql.NullString
	err := row.Scan(&r.ID, &r.Mode, &r.Status, &r.TotalFiles, &r.ImportedFiles, &r.SkippedFiles,
		&r.Entries, &r.Records, &r.Groups, &r.ErrorMessage, &started, &completed, &r.DurationMs)
	if err == sql.ErrNoRows {
		return r, err
	}
	if err != nil {
		return r, eris.Wrap(err, "scan run failed")
	}

	if r.StartedAt, err = parseTime(started); err != nil {
		return r, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return r, err
		}
		r.CompletedAt = &t
	}
	return r, nil
}

// timeLayout 定长 UTC 时间格式，保证按文本排序即按时间排序
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "invalid timestamp %q", s)
	}
	return t, nil
}

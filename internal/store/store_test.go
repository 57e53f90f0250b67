package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorlens/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "data", "sorlens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	started := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	require.NoError(t, st.CreateRun("run-1", model.ModeAuto, 2, started))

	mapping := model.NewColumnMapping()
	mapping.Set(model.RoleClass, 1, "label")
	require.NoError(t, st.AddFileResult("run-1", model.FileResult{
		File: "a.csv", Mode: model.ModeStudent, Status: model.StatusImported,
		Records: 3, MarksMissing: 1, Mapping: mapping, Duration: 15 * time.Millisecond,
	}))
	require.NoError(t, st.AddFileResult("run-1", model.FileResult{
		File: "b.csv", Mode: model.ModeStudent, Status: model.StatusSkipped,
		Skip: &model.SkipReason{File: "b.csv", Kind: model.SkipUnresolvedRole, Role: "class", Message: "нет столбца"},
	}))

	report := &model.BatchReport{
		RunID: "run-1", ImportedFiles: 1, SkippedFiles: 1,
		Records:  make([]model.StudentRecord, 3),
		Metrics:  make([]model.GroupMetrics, 1),
		Duration: 40 * time.Millisecond,
	}
	require.NoError(t, st.FinishRun(report, nil))

	detail, err := st.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, RunCompleted, detail.Status)
	assert.Equal(t, "auto", detail.Mode)
	assert.Equal(t, 2, detail.TotalFiles)
	assert.Equal(t, 3, detail.Records)
	assert.Equal(t, 1, detail.Groups)
	assert.Equal(t, int64(40), detail.DurationMs)
	assert.True(t, started.Equal(detail.StartedAt))
	require.NotNil(t, detail.CompletedAt)

	require.Len(t, detail.Files, 2)
	assert.Equal(t, "a.csv", detail.Files[0].File)
	assert.JSONEq(t, `[{"role":"class","column":1,"strategy":"label"}]`, string(detail.Files[0].Mapping))
	assert.Equal(t, "class", detail.Files[1].SkipRole)
	assert.Equal(t, string(model.SkipUnresolvedRole), detail.Files[1].SkipKind)
}

func TestFinishRun_Failed(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	require.NoError(t, st.CreateRun("run-2", model.ModeAggregate, 1, time.Now()))
	require.NoError(t, st.FinishRun(&model.BatchReport{RunID: "run-2", SkippedFiles: 1}, errors.New("no usable sources")))

	detail, err := st.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, RunFailed, detail.Status)
	assert.Equal(t, "no usable sources", detail.ErrorMessage)
	assert.Empty(t, detail.Files)
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	_, err := st.GetRun("missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRunNotFound))

	err = st.FinishRun(&model.BatchReport{RunID: "missing"}, nil)
	assert.True(t, eris.Is(err, ErrRunNotFound))
}

func TestListRunsAndDays(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	day1 := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	require.NoError(t, st.CreateRun("old", model.ModeAuto, 1, day1))
	require.NoError(t, st.CreateRun("new", model.ModeAuto, 2, day2))
	require.NoError(t, st.CreateRun("newer", model.ModeAuto, 1, day2.Add(time.Hour)))
	require.NoError(t, st.FinishRun(&model.BatchReport{RunID: "old", ImportedFiles: 1}, nil))
	require.NoError(t, st.FinishRun(&model.BatchReport{RunID: "new", ImportedFiles: 1, SkippedFiles: 1}, nil))
	require.NoError(t, st.FinishRun(&model.BatchReport{RunID: "newer", SkippedFiles: 1}, errors.New("boom")))

	runs, err := st.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].ID)
	assert.Equal(t, "new", runs[1].ID)

	days, err := st.ListRunDays()
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, DayStat{Day: "2026-10-19", Runs: 2, FailedRuns: 1, ImportedFiles: 1, SkippedFiles: 2}, days[0])
	assert.Equal(t, "2026-10-18", days[1].Day)
}

package store

import "github.com/rotisserie/eris"

// DayStat 按日期（UTC）汇总的运行统计
type DayStat struct {
	Day           string `json:"day"`
	Runs          int    `json:"runs"`
	FailedRuns    int    `json:"failedRuns"`
	ImportedFiles int    `json:"importedFiles"`
	SkippedFiles  int    `json:"skippedFiles"`
}

// ListRunDays 列出有运行记录的日期（倒序）
func (s *Store) ListRunDays() ([]DayStat, error) {
	rows, err := s.db.Query(`
		SELECT
			substr(started_at, 1, 10) AS day,
			COUNT(1),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
			SUM(imported_files),
			SUM(skipped_files)
		FROM import_runs
		GROUP BY day
		ORDER BY day DESC
	`, RunFailed)
	if err != nil {
		return nil, eris.Wrap(err, "query run days failed")
	}
	defer rows.Close()

	out := []DayStat{}
	for rows.Next() {
		var it DayStat
		if err := rows.Scan(&it.Day, &it.Runs, &it.FailedRuns, &it.ImportedFiles, &it.SkippedFiles); err != nil {
			return nil, eris.Wrap(err, "scan run day failed")
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate run days failed")
	}
	return out, nil
}

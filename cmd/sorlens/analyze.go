package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sorlens/internal/config"
	"sorlens/internal/exporter"
	"sorlens/internal/importer"
	"sorlens/internal/model"
	"sorlens/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze assessment spreadsheets",
	Long:  "Parses every file independently, prints per-work results, per-class metrics and diagnostics, and optionally writes an XLSX report.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := cfg.ImportMode()
		if m, _ := cmd.Flags().GetString("mode"); m != "" {
			mode = model.ImportMode(m)
			if !mode.Valid() {
				return eris.Errorf("unknown mode %q (auto, aggregate, student)", m)
			}
		}
		workers := cfg.Analysis.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}
		out, _ := cmd.Flags().GetString("out")
		asJSON, _ := cmd.Flags().GetBool("json")
		noHistory, _ := cmd.Flags().GetBool("no-history")

		var recorder importer.RunRecorder
		if !noHistory {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			recorder = st
		}

		sources := make([]importer.Source, len(args))
		for i, path := range args {
			sources[i] = importer.FileSource(path)
		}

		coord := importer.NewCoordinator(importer.Options{
			Mode:      mode,
			Workers:   workers,
			LevelSpan: cfg.Analysis.LevelSpan,
			Lexicon:   cfg.Lexicon(),
		}, recorder)

		report, runErr := coord.Run(cmd.Context(), sources)
		if runErr != nil {
			if report != nil && len(report.SkipReasons) > 0 {
				formatSkipReasons(os.Stderr, report.SkipReasons)
			}
			return runErr
		}

		if asJSON {
			if err := writeJSON(os.Stdout, report); err != nil {
				return err
			}
		} else {
			formatReport(os.Stdout, report)
		}

		if out != "" {
			if err := writeReport(report, out); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Отчёт сохранён: %s\n", out)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("mode", "", "parsing mode: auto, aggregate or student (default from config)")
	analyzeCmd.Flags().Int("workers", 1, "files processed in parallel")
	analyzeCmd.Flags().StringP("out", "o", "", "write an XLSX report to this path")
	analyzeCmd.Flags().Bool("json", false, "print the full result as JSON")
	analyzeCmd.Flags().Bool("no-history", false, "do not record this run in the history database")
}

// openStore 打开数据目录下的运行历史数据库
func openStore() (*store.Store, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}
	return store.New(config.DatabasePath(dataDir))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}

// writeReport 生成 XLSX 报告并保存到 path
func writeReport(report *model.BatchReport, path string) error {
	exp := exporter.NewExporter(exporter.Options{
		Title: cfg.Report.Title,
		Font:  cfg.Report.Font,
	})
	f, err := exp.Export(report, nil)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "save report %s", path)
	}
	zap.L().Info("report written", zap.String("path", path), zap.String("font", exp.Font()))
	return nil
}

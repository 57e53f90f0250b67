package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sorlens/internal/config"
)

var (
	cfg        *config.AppConfig
	cfgInfo    config.LoadConfigInfo
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sorlens",
	Short: "Анализ результатов СОР и СОЧ",
	Long:  "Reads school assessment spreadsheets (XLSX/CSV; legacy .xls and other binary files are rejected) with unknown layouts, infers their columns and produces quality/pass metrics, diagnostics and an XLSX report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, info, err := config.LoadConfigWithInfo(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		cfgInfo = info

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		zap.L().Debug("config loaded",
			zap.String("path", info.Path),
			zap.Bool("file_found", info.FileFound),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: next to the executable)")
	rootCmd.AddCommand(analyzeCmd, serveCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

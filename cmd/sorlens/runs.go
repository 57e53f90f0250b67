package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"sorlens/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect analysis run history",
	Long:  "Commands for listing and viewing recorded analysis runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run with its per-file results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		detail, err := st.GetRun(args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeJSON(os.Stdout, detail)
		}
		formatRunsList(os.Stdout, []store.Run{detail.Run})
		if detail.ErrorMessage != "" {
			fmt.Fprintf(os.Stdout, "Ошибка: %s\n", detail.ErrorMessage)
		}
		formatRunFiles(os.Stdout, detail.Files)
		return nil
	},
}

// -- runs days --

var runsDaysCmd = &cobra.Command{
	Use:   "days",
	Short: "Summarize runs per day",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		days, err := st.ListRunDays()
		if err != nil {
			return eris.Wrap(err, "runs days")
		}
		formatRunDays(os.Stdout, days)
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 50, "maximum number of runs to list")
	runsShowCmd.Flags().Bool("json", false, "print the run as JSON")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDaysCmd)
}

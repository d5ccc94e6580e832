package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/export"
	"github.com/T-USMANI24/hr-matcher/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs or print the decisions of one run",
	Run: func(cmd *cobra.Command, _ []string) {
		showHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to list")
	historyCmd.Flags().String("run", "", "print the decisions of this run as CSV")
}

func showHistory(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()
	config := mustConfig(logger)

	if config.History == nil || strings.TrimSpace(config.History.Path) == "" {
		logger.Fatal("history.path is not configured")
	}

	store, err := history.Open(config.History.Path)
	if err != nil {
		logger.Fatal("opening history", zap.Error(err))
	}
	defer store.Close()

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		records, err := store.Decisions(ctx, runID)
		if err != nil {
			logger.Fatal("reading decisions", zap.Error(err))
		}
		if err := export.WriteCSV(cmd.OutOrStdout(), records); err != nil {
			logger.Fatal("printing decisions", zap.Error(err))
		}
		return
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		logger.Fatal("listing runs", zap.Error(err))
	}

	if err := writeRuns(cmd.OutOrStdout(), runs); err != nil {
		logger.Fatal("printing runs", zap.Error(err))
	}
}

func writeRuns(out io.Writer, runs []history.Run) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "RUN\tCREATED\tCANDIDATES\tGATED\tEPSILON\tLEARNING RATE\tJD")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%g\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			r.Candidates,
			r.Gated,
			r.Epsilon,
			r.LearningRate,
			r.JDHash[:min(12, len(r.JDHash))],
		)
	}

	return w.Flush()
}

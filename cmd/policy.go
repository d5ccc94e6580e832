package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/T-USMANI24/hr-matcher/internal/rl"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect or reset the learned policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every state of the stored policy",
	Run: func(cmd *cobra.Command, _ []string) {
		showPolicy(cmd)
	},
}

var policyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the stored policy with an empty one",
	Run: func(cmd *cobra.Command, _ []string) {
		resetPolicy(cmd)
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd, policyResetCmd)

	policyResetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func showPolicy(cmd *cobra.Command) {
	logger := newLogger()
	config := mustConfig(logger)

	table, err := rl.NewTable(config.Policy.Actions)
	if err != nil {
		logger.Fatal("building the policy", zap.Error(err))
	}

	loaded, err := table.Load(config.Policy.File)
	if err != nil {
		logger.Fatal("loading the policy", zap.Error(err), zap.String("file", config.Policy.File))
	}
	if !loaded {
		logger.Info("no stored policy", zap.String("file", config.Policy.File))
		return
	}

	if err := writePolicy(cmd.OutOrStdout(), table); err != nil {
		logger.Fatal("printing the policy", zap.Error(err))
	}
}

// writePolicy prints one row per state in first-visit order.
func writePolicy(out io.Writer, table *rl.Table) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "STATE\t%s\n", strings.Join(table.Actions(), "\t"))
	for _, key := range table.Keys() {
		values := table.Values(key)
		cells := make([]string, 0, len(values))
		for _, a := range table.Actions() {
			cells = append(cells, fmt.Sprintf("%.4f", values[a]))
		}
		fmt.Fprintf(w, "%s\t%s\n", key, strings.Join(cells, "\t"))
	}
	fmt.Fprintf(w, "\nstates: %d, rewards: %d\n", table.Len(), len(table.Rewards()))

	return w.Flush()
}

func resetPolicy(cmd *cobra.Command) {
	logger := newLogger()
	config := mustConfig(logger)

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Reset the policy stored in %s", config.Policy.File),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				logger.Info("exiting", zap.String("reason", "reset not confirmed"))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	table, err := rl.NewTable(config.Policy.Actions)
	if err != nil {
		logger.Fatal("building the policy", zap.Error(err))
	}
	if err := table.Save(config.Policy.File); err != nil {
		logger.Fatal("saving the policy", zap.Error(err), zap.String("file", config.Policy.File))
	}

	logger.Info("policy reset", zap.String("file", config.Policy.File))
}

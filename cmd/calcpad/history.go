package main

import (
	"fmt"

	"github.com/aretw0/calcpad/internal/cli"
	"github.com/aretw0/calcpad/internal/presentation/tui"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the stored history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored history, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		var render runner.HistoryRenderer
		if runner.IsTerminal(cmd.InOrStdin()) {
			if r, err := tui.HistoryRenderer(env.Config.Terminal.Style); err == nil {
				render = r
			}
		}
		return cli.ListHistory(cmd.Context(), env, cmd.OutOrStdout(), render, jsonMode)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored history entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		var confirmer ports.Confirmer = ports.AlwaysConfirm
		if !yes {
			h := runner.NewTextHandler(cmd.InOrStdin(), cmd.OutOrStdout())
			confirmer = ports.ConfirmFunc(h.Confirm)
		}

		cleared, err := cli.ClearHistory(cmd.Context(), env, confirmer)
		if err != nil {
			return err
		}
		if cleared {
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "History unchanged")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyClearCmd)

	historyListCmd.Flags().Bool("json", false, "Print the history as JSON")
	historyClearCmd.Flags().BoolP("yes", "y", false, "Clear without asking")
}

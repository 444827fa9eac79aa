package main

import (
	"strings"

	"github.com/aretw0/calcpad/internal/cli"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <keys>...",
	Short: "Press keys headlessly and print the display",
	Long: `Loads the stored history, presses the given keys and prints the display.
Completed calculations are added to the history.

  calcpad eval "3+4*2="
  calcpad eval 12 + 3 = --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return cli.Eval(cmd.Context(), env, strings.Join(args, " "), cmd.OutOrStdout(), jsonMode)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("json", false, "Print the display and history as JSON")
}

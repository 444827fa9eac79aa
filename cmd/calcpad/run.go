package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/calcpad/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive calculator",
	Long: `Starts the calculator in the terminal. Type keys such as "12+3=" and press
enter; "history" shows past results, "#N" recalls entry N, "help" lists the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunSession(ctx, env, cmd.InOrStdin(), cmd.OutOrStdout(), cli.RunOptions{
			JSON:   jsonMode,
			Banner: env.Config.Terminal.Banner && !noBanner,
			Style:  env.Config.Terminal.Style,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

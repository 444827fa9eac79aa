package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/calcpad"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of calcpad",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "calcpad version %s\n", strings.TrimSpace(calcpad.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

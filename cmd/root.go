package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Bt1QDL/server"
)

var rootCmd = &cobra.Command{
	Use:   "bt1qdl",
	Short: "Bt1QDL is a media acquisition service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"Bt1QDL/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the acquisition HTTP server",
	Long:  `Start the Bt1QDL HTTP server, exposing the acquisition API and progress streams.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

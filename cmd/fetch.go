package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"Bt1QDL/config"
	"Bt1QDL/core/acquire"
	"Bt1QDL/core/audio"
	"Bt1QDL/core/extractor"
	"Bt1QDL/core/progress"
	"Bt1QDL/logger"
	"Bt1QDL/model"
)

// fetchCmd runs one acquisition from the command line, printing progress
// events to stdout. It needs no database; persistence is skipped.
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a single URL and print progress",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel)})

		for _, dir := range []string{cfg.UploadDir, cfg.AudioUploadDir, cfg.CoverUploadDir} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", dir, err)
				os.Exit(1)
			}
		}

		broadcaster := progress.NewBroadcaster(cfg.EventGracePeriod)
		orchestrator := acquire.NewOrchestrator(
			cfg,
			extractor.NewExecRunner(),
			audio.NewFFprobeProber(cfg.FFmpegPath),
			broadcaster,
			nil, nil, nil, nil,
		)

		sessionID := uuid.New().String()
		events, _ := broadcaster.Register(sessionID)

		go orchestrator.Run(context.Background(), sessionID, args[0])

		exitCode := 0
		for ev := range events {
			fmt.Printf("[%3d%%] %-8s %s\n", ev.Progress, ev.Stage, ev.Message)
			if ev.Type.Terminal() {
				if ev.Type == model.EventError {
					exitCode = 1
				}
				break
			}
		}
		os.Exit(exitCode)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

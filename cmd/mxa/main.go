// mxa drives a live-sound console's monitor mixes over OSC.
//
//	mxa serve                      # HTTP API on :8501, reloads session.json on edit
//	mxa send --artist 2=on         # apply the session once
//	mxa transcript                 # print what send would put on the wire
//	mxa import old_session.json    # convert a legacy session file
//	mxa monitor --listen :8001     # print frames arriving from the console
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/config"
	"github.com/mxa-live/mxa/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "mxa",
	Short:         "Monitor mix automation for OSC consoles",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Options{
			Level:   cfg.Logging.Level,
			JSON:    cfg.Logging.JSON,
			Verbose: verbose,
		})
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Settings file")

	rootCmd.AddCommand(
		serveCmd,
		sendCmd,
		transcriptCmd,
		importCmd,
		exportCmd,
		levelsCmd,
		monitorCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

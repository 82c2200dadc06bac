package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrack/internal/logging"
)

var (
	verbose    bool
	configPath string
	logFile    string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subtrack",
	Short: "Subtitle track manager and render dispatcher",
	Long: `Subtrack discovers the subtitle tracks of a media file, picks the
right one for your language preferences and drives a text or bitmap
renderer with styled, correctly timed cues.

External subtitle files (SRT, WebVTT, ASS) can be added next to the
embedded tracks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logFile == "" {
			logger = logging.NewLogger(verbose)
			return nil
		}
		l, err := logging.NewFileLogger(verbose, logFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Settings file (YAML)")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

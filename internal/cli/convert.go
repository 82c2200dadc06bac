package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrack/internal/fetch"
	"github.com/mgpai22/subtrack/internal/ffmpeg"
	"github.com/mgpai22/subtrack/internal/subtitle"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert an SRT or WebVTT file to ASS",
	Long: `Convert an SRT or WebVTT subtitle file (local path or URL) to an ASS
script, the same way external subtitle tracks are prepared for the
text renderer.

Examples:
  subtrack convert movie.en.srt
  subtrack convert https://cdn.example/ep1.vtt -o ep1.ass --converter builtin`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		String("converter", "ffmpeg", "Converter to use (ffmpeg, builtin)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	src := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	converterName, _ := cmd.Flags().GetString("converter")

	if outputPath == "" {
		outputPath = assOutputPath(src)
	}

	if subtitle.FormatFromPath(src) == subtitle.FormatASS {
		return fmt.Errorf("%s is already an ASS script", src)
	}

	var ffmpegPath string
	if strings.ToLower(converterName) != "builtin" {
		p, err := ffmpeg.FFmpegPath()
		if err != nil {
			return err
		}
		ffmpegPath = p
	}

	converter, err := newConverter(converterName, fetch.New(), ffmpegPath)
	if err != nil {
		return err
	}

	logger.Infow("Converting subtitle", "src", src, "output", outputPath, "converter", converterName)

	out, err := converter(context.Background(), src, "")
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitle converted successfully: %s\n", absOutput)
	return nil
}

// assOutputPath swaps the extension. URLs land in the working directory.
func assOutputPath(src string) string {
	if strings.Contains(src, "://") {
		if i := strings.IndexAny(src, "?#"); i >= 0 {
			src = src[:i]
		}
		src = filepath.Base(src)
	}
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".ass"
}

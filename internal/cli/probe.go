package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/ffmpeg"
	"github.com/mgpai22/subtrack/internal/probe"
	"github.com/mgpai22/subtrack/internal/selection"
	"github.com/mgpai22/subtrack/internal/track"
)

var probeCmd = &cobra.Command{
	Use:   "probe [media_file]",
	Short: "List the subtitle tracks of a media file",
	Long: `List every subtitle stream in a media file along with the track
the default-track heuristic would pick for the configured language
preferences.

Examples:
  subtrack probe movie.mkv
  subtrack probe movie.mkv --languages ja,en --blacklist signs`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().
		String("languages", "", "Preferred languages, comma separated (overrides settings)")
	probeCmd.Flags().
		String("blacklist", "", "Label substrings to avoid, comma separated (overrides settings)")
}

func runProbe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if cmd.Flags().Changed("languages") {
		settings.PreferredLanguage, _ = cmd.Flags().GetString("languages")
	}
	if cmd.Flags().Changed("blacklist") {
		settings.Blacklist, _ = cmd.Flags().GetString("blacklist")
	}

	ffprobePath, err := ffmpeg.FFprobePath()
	if err != nil {
		return err
	}

	logger.Debugw("Probing media", "media", mediaPath, "ffprobe", ffprobePath)

	prober := &probe.Prober{FFprobePath: ffprobePath}
	streams, err := prober.Subtitles(context.Background(), mediaPath)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	registry := track.NewRegistry()
	for _, s := range streams {
		if _, err := registry.AddEmbedded(s.Info()); err != nil {
			logger.Warnw("Skipping stream", "index", s.Index, "error", err)
		}
	}
	tracks := registry.List()

	if len(tracks) == 0 {
		fmt.Println("No subtitle tracks found")
		return nil
	}

	prefs := selection.ParsePreferences(settings.PreferredLanguage, settings.Blacklist)
	chosen := selection.Default(tracks, prefs)

	printTracks(tracks, chosen)
	return nil
}

func printTracks(tracks []track.Track, chosen int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tTRACK\tTYPE\tLANG\tCODEC\tFLAGS\tLABEL")
	for _, t := range tracks {
		marker := ""
		if t.Number == chosen {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			marker, t.Number, t.Origin, t.Language, t.CodecID, flags(t), t.Label)
	}
	_ = w.Flush()

	if chosen == track.None {
		fmt.Println("\nDefault: none")
	} else {
		fmt.Printf("\nDefault: track %d\n", chosen)
	}
}

func flags(t track.Track) string {
	switch {
	case t.Default && t.Forced:
		return "default,forced"
	case t.Default:
		return "default"
	case t.Forced:
		return "forced"
	default:
		return "-"
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/convert"
	"github.com/mgpai22/subtrack/internal/cue"
	"github.com/mgpai22/subtrack/internal/fetch"
	"github.com/mgpai22/subtrack/internal/ffmpeg"
	"github.com/mgpai22/subtrack/internal/loader"
	"github.com/mgpai22/subtrack/internal/manager"
	"github.com/mgpai22/subtrack/internal/metrics"
	"github.com/mgpai22/subtrack/internal/probe"
	"github.com/mgpai22/subtrack/internal/render"
	"github.com/mgpai22/subtrack/internal/style"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/mgpai22/subtrack/internal/track"
)

var playCmd = &cobra.Command{
	Use:   "play [media_file]",
	Short: "Run the subtitle pipeline for a media file against recording renderers",
	Long: `Register every subtitle track of a media file (plus any external files),
feed the embedded text cues through the cue cache, select a track and
report what the renderers received.

--track accepts a track number, "auto" for the default-track heuristic,
or "none".

Examples:
  subtrack play movie.mkv
  subtrack play movie.mkv --track 3 --delay 0.5
  subtrack play movie.mkv --sub movie.en.srt --track 10000 --converter builtin
  subtrack play movie.mkv --config subtrack.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		StringP("track", "t", "auto", "Track to select (number, auto, none)")
	playCmd.Flags().
		StringSliceP("sub", "s", nil, "External subtitle file or URL (repeatable)")
	playCmd.Flags().
		String("converter", "ffmpeg", "Converter for external SRT/VTT files (ffmpeg, builtin)")
	playCmd.Flags().
		Float64("delay", 0, "Subtitle delay in seconds (overrides settings)")
	playCmd.Flags().
		String("font-dir", "", "Directory with custom fonts, looked up as <name>.ttf or <name>.otf")
	playCmd.Flags().
		Bool("watch", false, "Keep running and apply settings file changes")
	playCmd.Flags().
		Bool("metrics", false, "Print Prometheus metrics on exit")
	playCmd.Flags().
		String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
}

func runPlay(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]

	trackFlag, _ := cmd.Flags().GetString("track")
	subs, _ := cmd.Flags().GetStringSlice("sub")
	converterName, _ := cmd.Flags().GetString("converter")
	fontDir, _ := cmd.Flags().GetString("font-dir")
	watch, _ := cmd.Flags().GetBool("watch")
	dumpMetrics, _ := cmd.Flags().GetBool("metrics")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	selectMode, trackNumber, err := parseTrackFlag(trackFlag)
	if err != nil {
		return err
	}
	if watch && configPath == "" {
		return errors.New("--watch needs --config")
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if cmd.Flags().Changed("delay") {
		settings.SubtitleDelay, _ = cmd.Flags().GetFloat64("delay")
	}

	paths, err := ffmpeg.Ensure()
	if err != nil {
		return err
	}

	fetcher := fetch.New()
	converter, err := newConverter(converterName, fetcher, paths.FFmpeg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if metricsAddr != "" {
		srv := metrics.NewServer(metricsAddr, reg)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Errorw("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	text := render.NewMemoryText()
	bitmap := render.NewMemoryBitmap()

	opts := manager.Options{
		NewText:   func() (render.TextRenderer, error) { return text, nil },
		NewBitmap: func() (render.BitmapRenderer, error) { return bitmap, nil },
		Settings:  settings,
		Fetcher:   fetcher,
		Converter: converter,
		Fonts:     fontResolver(fontDir),
		Logger:    logger,
		Metrics:   m,
	}
	// in watch mode the file is the source of truth, writing it back would
	// retrigger the watcher
	if configPath != "" && !watch {
		opts.Store = config.NewStore(configPath)
	}

	mgr, err := manager.New(opts)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Destroy() }()

	mgr.Subscribe(func(ev manager.Event) {
		switch e := ev.(type) {
		case manager.TrackSelected:
			logger.Infow("Track selected", "track", e.TrackNumber, "origin", e.Origin.String())
		case manager.TrackDeselected:
			logger.Infow("Subtitles off")
		case manager.Alert:
			logger.Warnw("Subtitle alert", "severity", e.Severity.String(), "message", e.Message)
		}
	})

	extractor := &convert.FFmpeg{Path: paths.FFmpeg, Logger: logger}
	if err := registerEmbedded(ctx, mgr, extractor, paths.FFprobe, mediaPath); err != nil {
		return err
	}
	for _, src := range subs {
		if _, err := mgr.AddFileTrack(fileTrackInfo(src)); err != nil {
			return err
		}
	}

	switch selectMode {
	case selectAuto:
		if _, err := mgr.SelectDefault(); err != nil {
			logger.Warnw("Default selection failed", "error", err)
		}
	case selectNone:
		_ = mgr.SetNoTrack()
	default:
		if err := mgr.SelectTrack(trackNumber); err != nil {
			logger.Warnw("Selection failed", "track", trackNumber, "error", err)
		}
	}
	mgr.Wait()

	printSummary(mgr, text.Snapshot(), bitmap.Snapshot())

	if watch {
		logger.Infow("Watching settings", "config", configPath)
		err := config.Watch(ctx, configPath, func(s config.Settings, err error) {
			if err != nil {
				logger.Warnw("Settings reload failed", "error", err)
				return
			}
			if err := mgr.UpdateSettings(s); err != nil {
				logger.Warnw("Settings update rejected", "error", err)
				return
			}
			logger.Infow("Settings applied", "delay_s", s.SubtitleDelay, "offset_s", text.Snapshot().Offset)
		})
		if err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
	}

	if dumpMetrics {
		if err := metrics.WriteText(os.Stdout, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// registerEmbedded probes the media file, extracts each text stream as a
// script and replays its dialogues as demuxed cues.
func registerEmbedded(ctx context.Context, mgr *manager.Manager, extractor *convert.FFmpeg, ffprobePath, mediaPath string) error {
	prober := &probe.Prober{FFprobePath: ffprobePath}
	streams, err := prober.Subtitles(ctx, mediaPath)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	for _, s := range streams {
		info := s.Info()

		if !s.IsText() {
			if _, err := mgr.AddEmbeddedTrack(info); err != nil {
				logger.Warnw("Skipping stream", "index", s.Index, "error", err)
				continue
			}
			logger.Infow("Bitmap track registered without cues", "track", s.Index, "codec", s.CodecName)
			continue
		}

		var script *subtitle.Script
		content, err := extractor.ExtractScript(ctx, mediaPath, s.Index)
		if err == nil {
			script, err = subtitle.ParseScript(content)
		}
		if err != nil {
			logger.Warnw("Could not extract subtitle stream", "index", s.Index, "error", err)
		} else {
			info.HeaderData = script.Header
		}

		if _, err := mgr.AddEmbeddedTrack(info); err != nil {
			logger.Warnw("Skipping stream", "index", s.Index, "error", err)
			continue
		}
		if script == nil {
			continue
		}

		for _, d := range script.Dialogues {
			if _, err := mgr.AddCue(dialogueCue(s.Index, s.CodecName, d)); err != nil {
				return err
			}
		}
		logger.Debugw("Cues recorded", "track", s.Index, "count", len(script.Dialogues))
	}
	return nil
}

func dialogueCue(trackNumber int, codecID string, d subtitle.Dialogue) cue.Cue {
	duration := d.EndMs - d.StartMs
	if duration < 0 {
		duration = 0
	}
	return cue.Cue{
		TrackNumber: trackNumber,
		CodecID:     codecID,
		StartMs:     d.StartMs,
		DurationMs:  duration,
		Text:        d.Text,
		Extra: cue.Extra{
			Style:     d.Style,
			Name:      d.Name,
			MarginL:   d.MarginL,
			MarginR:   d.MarginR,
			MarginV:   d.MarginV,
			Effect:    d.Effect,
			Layer:     d.Layer,
			ReadOrder: d.ReadOrder,
		},
	}
}

func fileTrackInfo(src string) manager.FileTrackInfo {
	kind := track.FileForeign
	if subtitle.FormatFromPath(src) == subtitle.FormatASS {
		kind = track.FileNative
	}
	return manager.FileTrackInfo{
		Kind:     kind,
		Src:      src,
		Label:    filepath.Base(src),
		Language: languageFromPath(src),
	}
}

// languageFromPath reads the language from names like movie.en.srt.
func languageFromPath(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	ext := filepath.Ext(base)
	if len(ext) >= 3 && len(ext) <= 4 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

func newConverter(name string, fetcher *fetch.Fetcher, ffmpegPath string) (loader.Converter, error) {
	switch strings.ToLower(name) {
	case "builtin":
		return convert.Builtin(fetcher, subtitle.ASSOptions{}), nil
	case "ffmpeg", "":
		c := &convert.FFmpeg{Path: ffmpegPath, Logger: logger}
		return c.Convert, nil
	default:
		return nil, fmt.Errorf("invalid converter %q: supported converters are ffmpeg, builtin", name)
	}
}

func fontResolver(dir string) style.FontResolver {
	if dir == "" {
		return nil
	}
	return func(name string) string {
		for _, ext := range []string{".ttf", ".otf"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return "file://" + path
			}
		}
		return ""
	}
}

type selectKind int

const (
	selectAuto selectKind = iota
	selectNone
	selectNumber
)

func parseTrackFlag(value string) (selectKind, int, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return selectAuto, track.None, nil
	case "none", "off":
		return selectNone, track.None, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("invalid track %q: use a track number, auto or none", value)
	}
	return selectNumber, n, nil
}

func printSummary(mgr *manager.Manager, text render.TextSnapshot, bitmap render.BitmapSnapshot) {
	state := mgr.State()

	fmt.Printf("Tracks: %d\n", len(mgr.Tracks()))
	if state.Kind == manager.StateNoTrack {
		fmt.Println("Selected: none")
	} else {
		fmt.Printf("Selected: track %d (%s)\n", state.TrackNumber, state.Kind)
	}
	fmt.Printf("Text renderer: %d events, offset %.3fs, override %t\n",
		len(text.Events), text.Offset, text.Override != nil)
	fmt.Printf("Bitmap renderer: %d events, offset %.3fs\n", len(bitmap.Events), bitmap.Offset)
}

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subtrack/internal/loader"
	"github.com/mgpai22/subtrack/internal/logging"
	"github.com/mgpai22/subtrack/internal/subtitle"
)

// waitDelay bounds how long Wait blocks on ffmpeg's output pipes after a kill.
const waitDelay = 2 * time.Second

// Builtin converts SRT and VTT to ASS in process. Inline content wins over
// src; src is read through f.
func Builtin(f loader.Fetcher, opts subtitle.ASSOptions) loader.Converter {
	return func(ctx context.Context, src, content string) (string, error) {
		if content == "" {
			if f == nil {
				return "", errors.Newf("no fetcher for %s", src)
			}
			var err error
			if content, err = f.Fetch(ctx, src); err != nil {
				return "", err
			}
		}
		return subtitle.ConvertToASS(content, opts)
	}
}

// FFmpeg converts and extracts subtitles with an ffmpeg binary.
type FFmpeg struct {
	Path    string
	TempDir string
	Logger  *logging.Logger
}

// Convert is a loader.Converter. src may be a path or any URL ffmpeg can
// open; inline content is staged in a temp file first.
func (c *FFmpeg) Convert(ctx context.Context, src, content string) (string, error) {
	if content == "" {
		if src == "" {
			return "", errors.New("nothing to convert")
		}
		return c.toASS(ctx, src, ffmpeg.KwArgs{})
	}

	dir, err := os.MkdirTemp(c.TempDir, "subtrack-in-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	input := filepath.Join(dir, "input"+inlineExt(content))
	if err := os.WriteFile(input, []byte(content), 0o600); err != nil {
		return "", errors.Wrap(err, "stage inline subtitle")
	}
	return c.toASS(ctx, input, ffmpeg.KwArgs{})
}

// ExtractScript pulls one subtitle stream out of a media file as ASS.
func (c *FFmpeg) ExtractScript(ctx context.Context, mediaPath string, streamIndex int) (string, error) {
	return c.toASS(ctx, mediaPath, ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:%d", streamIndex),
	})
}

func (c *FFmpeg) toASS(ctx context.Context, input string, kwargs ffmpeg.KwArgs) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp(c.TempDir, "subtrack-out-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	output := filepath.Join(dir, "out.ass")
	kwargs["c:s"] = "ass"

	args := ffmpeg.Input(input).
		Output(output, kwargs).
		OverWriteOutput().
		GetArgs()

	if c.Logger != nil {
		c.Logger.Debugw("running ffmpeg", "input", input, "output", output, "args", args)
	}

	// cancelling ctx kills ffmpeg mid conversion
	cmd := exec.CommandContext(ctx, c.path(), args...)
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errors.Wrapf(ctxErr, "ffmpeg convert %s", input)
		}
		return "", errors.Wrapf(err, "ffmpeg convert %s: %s", input, lastLine(stderr.String()))
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return "", errors.Wrap(err, "read ffmpeg output")
	}
	return subtitle.NormalizeNewlines(string(data)), nil
}

func (c *FFmpeg) path() string {
	if c.Path == "" {
		return "ffmpeg"
	}
	return c.Path
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// inlineExt picks an extension so ffmpeg's demuxer probe has a hint.
func inlineExt(content string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))
	switch {
	case strings.HasPrefix(trimmed, "WEBVTT"):
		return ".vtt"
	case subtitle.IsScript(trimmed):
		return ".ass"
	default:
		return ".srt"
	}
}

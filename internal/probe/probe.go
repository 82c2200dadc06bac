package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subtrack/internal/track"
)

// Stream is one subtitle stream as reported by ffprobe.
type Stream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Tags        map[string]string `json:"tags"`
	Disposition struct {
		Default int `json:"default"`
		Forced  int `json:"forced"`
	} `json:"disposition"`
}

type ffprobeOutput struct {
	Streams []Stream `json:"streams"`
}

// Language returns the stream's language tag, case-insensitively.
func (s Stream) Language() string {
	return s.tag("language")
}

func (s Stream) Title() string {
	return s.tag("title")
}

func (s Stream) tag(key string) string {
	for k, v := range s.Tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// IsText reports whether ffmpeg can extract the stream as an ASS script.
func (s Stream) IsText() bool {
	return !track.IsBitmapCodec(s.CodecName)
}

// Info maps the stream to a container track record. The stream index
// becomes the track number.
func (s Stream) Info() track.Info {
	return track.Info{
		Number:      s.Index,
		Language:    s.Language(),
		LanguageTag: s.Language(),
		CodecID:     s.CodecName,
		Name:        s.Title(),
		Forced:      s.Disposition.Forced == 1,
		Default:     s.Disposition.Default == 1,
	}
}

// Prober lists subtitle streams with ffprobe.
type Prober struct {
	FFprobePath string
}

func (p *Prober) Subtitles(ctx context.Context, mediaPath string) ([]Stream, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return nil, errors.Wrapf(err, "media file %s", mediaPath)
	}

	cmd := exec.CommandContext(ctx, p.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		mediaPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "ffprobe %s: %s", mediaPath, strings.TrimSpace(stderr.String()))
	}

	return ParseStreams(stdout.Bytes())
}

// ParseStreams decodes ffprobe -show_streams JSON, keeping only subtitle
// streams.
func ParseStreams(data []byte) ([]Stream, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "parse ffprobe output")
	}

	streams := make([]Stream, 0, len(out.Streams))
	for _, s := range out.Streams {
		if s.CodecType == "" || s.CodecType == "subtitle" {
			streams = append(streams, s)
		}
	}
	return streams, nil
}

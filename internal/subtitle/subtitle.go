package subtitle

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/crlf"
	"golang.org/x/text/transform"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// subtitle format based on file extension, empty when unknown
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return ""
	}
}

// reports whether content is already an ASS/SSA script
func IsScript(content string) bool {
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))
	return strings.HasPrefix(strings.ToLower(trimmed), "[script info]")
}

// converts CRLF and lone CR line endings to LF
func NormalizeNewlines(s string) string {
	out, _, err := transform.String(new(crlf.Normalize), s)
	if err != nil {
		return s
	}
	return out
}

func newlineReader(s string) io.Reader {
	return transform.NewReader(strings.NewReader(s), new(crlf.Normalize))
}

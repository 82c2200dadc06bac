package track

import (
	"fmt"
	"strings"
)

// None is the track number meaning "no subtitles".
const None = -1

// FileTrackBase is the first number handed to file tracks. Embedded tracks
// must stay below it.
const FileTrackBase = 10000

// Origin says where a track comes from and which backend renders it.
type Origin int

const (
	OriginEmbeddedText Origin = iota
	OriginEmbeddedBitmap
	OriginFile
)

func (o Origin) String() string {
	switch o {
	case OriginEmbeddedText:
		return "embedded-text"
	case OriginEmbeddedBitmap:
		return "embedded-bitmap"
	case OriginFile:
		return "file"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// FileKind says whether a file track still needs conversion.
type FileKind string

const (
	// already in the text renderer's format
	FileNative FileKind = "native"
	// needs the injected converter
	FileForeign FileKind = "foreign"
)

// FileSource is the file-track specific part of a Track.
type FileSource struct {
	Kind    FileKind
	Src     string
	Content string
	// converted content, set once loaded
	Loaded   string
	IsLoaded bool
}

// Track is the normalized entry for every known subtitle track.
type Track struct {
	Number      int
	Origin      Origin
	Language    string
	LanguageTag string
	Label       string
	Forced      bool
	Default     bool
	CodecID     string
	Header      string
	// distinct style names, parsed once from Header (or the loaded file)
	Styles []string
	File   FileSource
}

// Info is the container metadata record for an embedded track.
type Info struct {
	Number      int
	Language    string
	LanguageTag string
	CodecID     string
	Name        string
	Forced      bool
	Default     bool
	HeaderData  string
}

// FileDescriptor describes an externally supplied subtitle file.
type FileDescriptor struct {
	Kind     FileKind
	Src      string
	Content  string
	Label    string
	Language string
	Default  bool
}

// SingleStyle reports whether a style override can be applied without
// clobbering multi-style content.
func (t Track) SingleStyle() bool {
	return len(t.Styles) == 1
}

// StyleIndex resolves a style name to its position in the style table.
// Unknown names fall back to the first style, as ASS renderers do.
func (t Track) StyleIndex(name string) int {
	for i, s := range t.Styles {
		if s == name {
			return i
		}
	}
	for i, s := range t.Styles {
		if strings.EqualFold(s, name) {
			return i
		}
	}
	return 0
}

func (t Track) String() string {
	label := t.Label
	if label == "" {
		label = "-"
	}
	return fmt.Sprintf("#%d %s [%s] %s", t.Number, t.Origin, t.Language, label)
}

var bitmapCodecs = map[string]bool{
	"s_hdmv/pgs":        true,
	"s_vobsub":          true,
	"s_dvbsub":          true,
	"hdmv_pgs_subtitle": true,
	"dvd_subtitle":      true,
	"dvb_subtitle":      true,
	"pgssub":            true,
	"dvdsub":            true,
	"dvbsub":            true,
}

// IsBitmapCodec reports whether a codec id denotes image based subtitles.
func IsBitmapCodec(codecID string) bool {
	return bitmapCodecs[strings.ToLower(strings.TrimSpace(codecID))]
}

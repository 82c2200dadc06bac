package loader

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subtrack/internal/logging"
	"github.com/mgpai22/subtrack/internal/metrics"
	"github.com/mgpai22/subtrack/internal/track"
)

var (
	ErrEmptyContent = errors.New("file track produced no content")
	ErrNotFileTrack = errors.New("not a file track")
	ErrNoSource     = errors.New("file track has neither src nor content")
)

// Fetcher retrieves the raw content behind a file track's src.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (string, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, src string) (string, error)

func (f FetchFunc) Fetch(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}

// Converter turns a foreign file (given by src, or inline content) into a
// script the text renderer understands.
type Converter func(ctx context.Context, src, content string) (string, error)

// Loader resolves file tracks to renderer-native content and memoizes the
// result on the registry entry.
type Loader struct {
	Registry  *track.Registry
	Fetcher   Fetcher
	Converter Converter
	Logger    *logging.Logger
	Metrics   *metrics.Metrics
}

// Load returns track n's renderer-native content. Nothing is memoized when
// it fails.
func (l *Loader) Load(ctx context.Context, n int) (string, error) {
	t, ok := l.Registry.Get(n)
	if !ok {
		return "", errors.Wrapf(track.ErrNotFound, "track %d", n)
	}
	if t.Origin != track.OriginFile {
		return "", errors.Wrapf(ErrNotFileTrack, "track %d", n)
	}

	if t.File.IsLoaded {
		l.Metrics.RecordFileLoad("cached", 0)
		return t.File.Loaded, nil
	}

	start := time.Now()
	content, err := l.resolve(ctx, t)
	elapsed := time.Since(start).Seconds()

	if err == nil && strings.TrimSpace(content) == "" {
		err = errors.Wrapf(ErrEmptyContent, "track %d", n)
	}
	if err != nil {
		l.Metrics.RecordFileLoad("error", elapsed)
		return "", err
	}

	if err := l.Registry.SetLoaded(n, content); err != nil {
		return "", err
	}
	l.Metrics.RecordFileLoad("ok", elapsed)

	if l.Logger != nil {
		l.Logger.Debugw("file track loaded",
			"track", n,
			"kind", string(t.File.Kind),
			"bytes", len(content),
			"elapsed_s", elapsed,
		)
	}

	return content, nil
}

func (l *Loader) resolve(ctx context.Context, t track.Track) (string, error) {
	src := t.File.Src
	content := t.File.Content

	if t.File.Kind == track.FileNative {
		if content != "" {
			return content, nil
		}
		if src == "" {
			return "", errors.Wrapf(ErrNoSource, "track %d", t.Number)
		}
		if l.Fetcher == nil {
			return "", errors.Newf("track %d: no fetcher configured", t.Number)
		}
		out, err := l.Fetcher.Fetch(ctx, src)
		if err != nil {
			return "", errors.Wrapf(err, "fetch %s", src)
		}
		return out, nil
	}

	if src == "" && content == "" {
		return "", errors.Wrapf(ErrNoSource, "track %d", t.Number)
	}
	if l.Converter == nil {
		return "", errors.Newf("track %d: no converter configured", t.Number)
	}
	out, err := l.Converter(ctx, src, content)
	if err != nil {
		return "", errors.Wrapf(err, "convert track %d", t.Number)
	}
	return out, nil
}

package manager

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/subtrack/internal/loader"
	"github.com/mgpai22/subtrack/internal/track"
)

const convertedScript = singleStyleHeader + "Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,converted\n"

func TestFileTrackLoadsInBackground(t *testing.T) {
	calls := 0
	h := newHarness(t, func(o *Options) {
		o.Converter = func(ctx context.Context, src, content string) (string, error) {
			calls++
			return convertedScript, nil
		}
	})

	file, err := h.m.AddFileTrack(FileTrackInfo{Src: "en.srt", Label: "English"})
	require.NoError(t, err)
	h.reset()

	require.NoError(t, h.m.SelectTrack(file.Number))
	h.m.Wait()

	assert.Equal(t, convertedScript, h.text.Snapshot().Document)
	assert.Equal(t, State{Kind: StateFile, TrackNumber: file.Number}, h.m.State())
	assert.Equal(t, []Event{TrackSelected{TrackNumber: file.Number, Origin: track.OriginFile}}, h.recorded())

	stored, ok := h.m.Track(file.Number)
	require.True(t, ok)
	assert.True(t, stored.File.IsLoaded)
	assert.True(t, stored.SingleStyle())

	// memoized: reselecting is synchronous and does not convert again
	require.NoError(t, h.m.SetNoTrack())
	require.NoError(t, h.m.SelectTrack(file.Number))
	assert.Equal(t, convertedScript, h.text.Snapshot().Document)
	assert.Equal(t, 1, calls)
}

func TestNativeFileTrackIsFetched(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Fetcher = loader.FetchFunc(func(ctx context.Context, src string) (string, error) {
			return convertedScript, nil
		})
		o.Converter = func(context.Context, string, string) (string, error) {
			return "", errors.New("native files are not converted")
		}
	})

	file, err := h.m.AddFileTrack(FileTrackInfo{Kind: track.FileNative, Src: "https://cdn.example/en.ass"})
	require.NoError(t, err)
	require.NoError(t, h.m.SelectTrack(file.Number))
	h.m.Wait()

	assert.Equal(t, convertedScript, h.text.Snapshot().Document)
}

func TestStaleFileLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	h := newHarness(t, func(o *Options) {
		o.Converter = func(ctx context.Context, src, content string) (string, error) {
			close(started)
			<-release
			return convertedScript, nil
		}
	})

	slow, err := h.m.AddFileTrack(FileTrackInfo{Src: "slow.srt"})
	require.NoError(t, err)
	fast, err := h.m.AddFileTrack(FileTrackInfo{Kind: track.FileNative, Content: singleStyleHeader})
	require.NoError(t, err)

	require.NoError(t, h.m.SelectTrack(slow.Number))
	<-started
	assert.Equal(t, State{Kind: StateFile, TrackNumber: slow.Number, Loading: true}, h.m.State())

	require.NoError(t, h.m.SelectTrack(fast.Number))
	require.Eventually(t, func() bool {
		return h.m.State() == State{Kind: StateFile, TrackNumber: fast.Number}
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, singleStyleHeader, h.text.Snapshot().Document)
	h.reset()

	close(release)
	h.m.Wait()

	assert.Equal(t, singleStyleHeader, h.text.Snapshot().Document, "stale result must not reach the renderer")
	assert.Equal(t, fast.Number, h.m.SelectedTrackNumber())
	assert.Empty(t, h.recorded())

	// the slow result is still memoized for next time
	stored, _ := h.m.Track(slow.Number)
	assert.True(t, stored.File.IsLoaded)
}

func TestStaleLoadAfterSetNoTrack(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, func(o *Options) {
		o.Converter = func(ctx context.Context, src, content string) (string, error) {
			<-release
			return convertedScript, nil
		}
	})

	file, err := h.m.AddFileTrack(FileTrackInfo{Src: "slow.srt"})
	require.NoError(t, err)
	require.NoError(t, h.m.SelectTrack(file.Number))
	require.NoError(t, h.m.SetNoTrack())

	close(release)
	h.m.Wait()

	assert.Empty(t, h.text.Snapshot().Document)
	assert.Equal(t, noTrack, h.m.State())
}

func TestFileLoadFailure(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Converter = func(context.Context, string, string) (string, error) {
			return "", errors.New("unsupported format")
		}
	})

	file, err := h.m.AddFileTrack(FileTrackInfo{Src: "broken.sub"})
	require.NoError(t, err)
	h.reset()

	require.NoError(t, h.m.SelectTrack(file.Number))
	h.m.Wait()

	events := h.recorded()
	require.Len(t, events, 2)
	alert, ok := events[0].(Alert)
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, alert.Severity)
	assert.Equal(t, TrackDeselected{}, events[1])

	assert.Equal(t, noTrack, h.m.State())
	assert.Empty(t, h.text.Snapshot().Document, "no partial content is rendered")

	stored, _ := h.m.Track(file.Number)
	assert.False(t, stored.File.IsLoaded)
}

func TestReselectWhileLoadingKeepsPendingLoad(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	h := newHarness(t, func(o *Options) {
		o.Converter = func(ctx context.Context, src, content string) (string, error) {
			calls++
			<-release
			return convertedScript, nil
		}
	})

	file, err := h.m.AddFileTrack(FileTrackInfo{Src: "slow.srt"})
	require.NoError(t, err)
	require.NoError(t, h.m.SelectTrack(file.Number))
	require.NoError(t, h.m.SelectTrack(file.Number))

	close(release)
	h.m.Wait()

	assert.Equal(t, 1, calls)
	assert.Equal(t, convertedScript, h.text.Snapshot().Document)
}

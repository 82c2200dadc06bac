package track

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleStyleHeader = `[Script Info]
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize
Style: Default,Arial,20

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

func TestRegistryClassifiesByCodec(t *testing.T) {
	r := NewRegistry()

	text, err := r.AddEmbedded(Info{Number: 3, CodecID: "S_TEXT/ASS", Language: "eng", HeaderData: singleStyleHeader})
	require.NoError(t, err)
	assert.Equal(t, OriginEmbeddedText, text.Origin)
	assert.Equal(t, []string{"Default"}, text.Styles)
	assert.True(t, text.SingleStyle())

	pgs, err := r.AddEmbedded(Info{Number: 4, CodecID: "S_HDMV/PGS"})
	require.NoError(t, err)
	assert.Equal(t, OriginEmbeddedBitmap, pgs.Origin)
	assert.False(t, pgs.SingleStyle())
	assert.True(t, r.HasBitmap())
}

func TestRegistryHeaderlessTextUsesDefaultStyles(t *testing.T) {
	r := NewRegistry()

	srt, err := r.AddEmbedded(Info{Number: 1, CodecID: "S_TEXT/UTF8"})
	require.NoError(t, err)
	assert.Empty(t, srt.Header)
	assert.Equal(t, []string{"Default"}, srt.Styles)
	assert.True(t, srt.SingleStyle())
	assert.Equal(t, 0, srt.StyleIndex("Default"))
}

func TestRegistryRejectsDuplicatesAndReservedNumbers(t *testing.T) {
	r := NewRegistry()

	_, err := r.AddEmbedded(Info{Number: 1, CodecID: "S_TEXT/UTF8"})
	require.NoError(t, err)

	_, err = r.AddEmbedded(Info{Number: 1, CodecID: "S_TEXT/UTF8"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = r.AddEmbedded(Info{Number: FileTrackBase, CodecID: "S_TEXT/UTF8"})
	assert.True(t, errors.Is(err, ErrReservedNumber))

	assert.Equal(t, 1, r.Len())
}

func TestRegistryFileNumbering(t *testing.T) {
	r := NewRegistry()

	_, err := r.AddEmbedded(Info{Number: 2, CodecID: "S_TEXT/ASS"})
	require.NoError(t, err)

	first := r.AddFile(FileDescriptor{Src: "a.srt", Label: "A"})
	second := r.AddFile(FileDescriptor{Src: "b.srt", Label: "B", Kind: FileNative})

	assert.Equal(t, FileTrackBase, first.Number)
	assert.Equal(t, FileTrackBase+1, second.Number)
	assert.Equal(t, OriginFile, first.Origin)
	assert.Equal(t, FileForeign, first.File.Kind)
	assert.Equal(t, FileNative, second.File.Kind)
}

func TestRegistryListIsSorted(t *testing.T) {
	r := NewRegistry()

	r.AddFile(FileDescriptor{Src: "x.vtt"})
	for _, n := range []int{7, 2, 5} {
		_, err := r.AddEmbedded(Info{Number: n, CodecID: "S_TEXT/UTF8"})
		require.NoError(t, err)
	}

	var numbers []int
	for _, tr := range r.List() {
		numbers = append(numbers, tr.Number)
	}
	assert.Equal(t, []int{2, 5, 7, FileTrackBase}, numbers)
}

func TestRegistrySetLoaded(t *testing.T) {
	r := NewRegistry()
	file := r.AddFile(FileDescriptor{Src: "x.srt"})

	require.NoError(t, r.SetLoaded(file.Number, singleStyleHeader))

	got, ok := r.Get(file.Number)
	require.True(t, ok)
	assert.True(t, got.File.IsLoaded)
	assert.Equal(t, singleStyleHeader, got.File.Loaded)
	assert.Equal(t, []string{"Default"}, got.Styles)

	err := r.SetLoaded(99, "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStyleIndex(t *testing.T) {
	tr := Track{Styles: []string{"Default", "Sign", "Song"}}

	assert.Equal(t, 1, tr.StyleIndex("Sign"))
	assert.Equal(t, 2, tr.StyleIndex("song"))
	assert.Equal(t, 0, tr.StyleIndex("Missing"))
}

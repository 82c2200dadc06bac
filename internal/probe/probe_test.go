package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/subtrack/internal/track"
)

const ffprobeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video"
    },
    {
      "index": 2,
      "codec_name": "ass",
      "codec_type": "subtitle",
      "disposition": {"default": 1, "forced": 0},
      "tags": {"language": "eng", "title": "Full"}
    },
    {
      "index": 3,
      "codec_name": "hdmv_pgs_subtitle",
      "codec_type": "subtitle",
      "disposition": {"default": 0, "forced": 1},
      "tags": {"LANGUAGE": "jpn"}
    }
  ]
}`

func TestParseStreams(t *testing.T) {
	streams, err := ParseStreams([]byte(ffprobeJSON))
	require.NoError(t, err)
	require.Len(t, streams, 2)

	ass := streams[0]
	assert.True(t, ass.IsText())
	assert.Equal(t, track.Info{
		Number:      2,
		Language:    "eng",
		LanguageTag: "eng",
		CodecID:     "ass",
		Name:        "Full",
		Default:     true,
	}, ass.Info())

	pgs := streams[1]
	assert.False(t, pgs.IsText())
	assert.Equal(t, "jpn", pgs.Language())
	assert.True(t, pgs.Info().Forced)
}

func TestParseStreamsInvalid(t *testing.T) {
	_, err := ParseStreams([]byte("not json"))
	assert.Error(t, err)
}

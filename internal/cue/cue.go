package cue

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Extra carries the format specific fields of a cue event.
type Extra struct {
	// text cues
	Style     string
	MarginL   int
	MarginR   int
	MarginV   int
	Effect    string
	Layer     int
	ReadOrder int
	Name      string

	// bitmap cues
	X            int
	Y            int
	Width        int
	Height       int
	CropX        int
	CropY        int
	CropWidth    int
	CropHeight   int
	CanvasWidth  int
	CanvasHeight int
}

// Cue is one timed subtitle unit as delivered by the demuxer.
type Cue struct {
	TrackNumber int
	CodecID     string
	StartMs     int64
	DurationMs  int64
	Text        string
	ImageData   []byte
	Extra       Extra
}

// Key is the content identity of a cue.
type Key uint64

// Kind selects the renderer representation of a cue. It follows the
// track's origin, not the payload: a bitmap clear carries no image.
type Kind int

const (
	KindText Kind = iota
	KindBitmap
)

func (k Kind) String() string {
	if k == KindBitmap {
		return "bitmap"
	}
	return "text"
}

// Key hashes every field, so redelivered cues collapse to one entry.
func (c Cue) Key() Key {
	d := xxhash.New()
	var buf [8]byte

	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}
	// length prefixed so adjacent fields cannot run into each other
	putBytes := func(b []byte) {
		putInt(int64(len(b)))
		_, _ = d.Write(b)
	}
	putString := func(s string) {
		putInt(int64(len(s)))
		_, _ = d.WriteString(s)
	}

	putInt(int64(c.TrackNumber))
	putString(c.CodecID)
	putInt(c.StartMs)
	putInt(c.DurationMs)
	putString(c.Text)
	if c.ImageData == nil {
		putInt(-1)
	} else {
		putBytes(c.ImageData)
	}

	e := c.Extra
	putString(e.Style)
	putString(e.Effect)
	putString(e.Name)
	for _, v := range []int{
		e.MarginL, e.MarginR, e.MarginV, e.Layer, e.ReadOrder,
		e.X, e.Y, e.Width, e.Height,
		e.CropX, e.CropY, e.CropWidth, e.CropHeight,
		e.CanvasWidth, e.CanvasHeight,
	} {
		putInt(int64(v))
	}

	return Key(d.Sum64())
}

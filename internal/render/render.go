// Package render defines the contract the subtitle manager drives: one text
// backend (an ASS renderer) and one bitmap backend (an image compositor).
package render

// TextEvent is the text renderer's native event shape. Timings are in
// milliseconds and the style is already resolved to an index into the
// document's style table.
type TextEvent struct {
	StartMs    int64
	DurationMs int64
	ReadOrder  int
	Layer      int
	Style      int
	Name       string
	MarginL    int
	MarginR    int
	MarginV    int
	Effect     string
	Text       string
}

// BitmapEvent is a positioned image cue. Timings are in seconds.
type BitmapEvent struct {
	Start        float64
	Duration     float64
	Image        []byte
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

// StyleOverride is a fully specified single-style replacement. Colours use
// the renderer's 0xRRGGBBAA layout where AA is transparency.
type StyleOverride struct {
	FontName        string
	FontSize        int
	PrimaryColour   uint32
	SecondaryColour uint32
	OutlineColour   uint32
	BackColour      uint32
	Bold            bool
	Italic          bool
	ScaleX          float64
	ScaleY          float64
	Spacing         float64
	Angle           float64
	BorderStyle     int
	Outline         float64
	Shadow          float64
	Alignment       int
	MarginL         int
	MarginR         int
	MarginV         int
}

// Offsetter is implemented by both backends.
type Offsetter interface {
	// SetTimeOffset shifts the renderer clock; negative values make
	// subtitles appear later.
	SetTimeOffset(seconds float64)
}

// TextRenderer renders ASS documents.
type TextRenderer interface {
	Offsetter
	SetDocument(content string)
	AppendEvent(event TextEvent)
	// SetStyleOverride with nil removes any override.
	SetStyleOverride(style *StyleOverride)
	SetDefaultFont(name string)
	RegisterFont(url string)
	Resize()
	Clear()
	Destroy()
}

// BitmapRenderer composites image cues.
type BitmapRenderer interface {
	Offsetter
	AppendEvent(event BitmapEvent)
	Resize()
	Clear()
	Destroy()
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryTextDocumentResetsTrackState(t *testing.T) {
	m := NewMemoryText()
	m.SetDocument("[Script Info]\n")
	m.AppendEvent(TextEvent{StartMs: 1000, Text: "a"})
	m.SetTimeOffset(-0.5)
	m.SetDefaultFont("Liberation Sans")

	m.SetDocument("[Script Info]\nTitle: b\n")

	snap := m.Snapshot()
	assert.Empty(t, snap.Events)
	assert.Zero(t, snap.Offset)
	assert.Equal(t, "Liberation Sans", snap.DefaultFont)
}

func TestMemoryTextSnapshotIsCopy(t *testing.T) {
	m := NewMemoryText()
	override := &StyleOverride{FontName: "Noto Sans", FontSize: 40}
	m.SetStyleOverride(override)
	m.AppendEvent(TextEvent{Text: "a"})

	override.FontSize = 10
	snap := m.Snapshot()
	snap.Events[0].Text = "changed"
	snap.Override.FontName = "changed"

	again := m.Snapshot()
	assert.Equal(t, "a", again.Events[0].Text)
	assert.Equal(t, "Noto Sans", again.Override.FontName)
	assert.Equal(t, 40, again.Override.FontSize)

	m.SetStyleOverride(nil)
	assert.Nil(t, m.Snapshot().Override)
}

func TestMemoryTextClearAndDestroy(t *testing.T) {
	m := NewMemoryText()
	m.SetDocument("doc")
	m.AppendEvent(TextEvent{Text: "a"})
	m.RegisterFont("file:///fonts/a.ttf")

	m.Clear()
	snap := m.Snapshot()
	assert.Empty(t, snap.Document)
	assert.Empty(t, snap.Events)
	assert.Equal(t, []string{"file:///fonts/a.ttf"}, snap.Fonts)
	assert.False(t, snap.Destroyed)

	m.Destroy()
	assert.True(t, m.Snapshot().Destroyed)
}

func TestMemoryBitmap(t *testing.T) {
	m := NewMemoryBitmap()
	m.AppendEvent(BitmapEvent{Start: 1, Duration: 2, Width: 10, Height: 4})
	m.SetTimeOffset(0.25)
	m.Resize()
	m.Resize()

	snap := m.Snapshot()
	assert.Len(t, snap.Events, 1)
	assert.Equal(t, 0.25, snap.Offset)
	assert.Equal(t, 2, snap.Resizes)

	m.Clear()
	assert.Empty(t, m.Snapshot().Events)

	m.Destroy()
	assert.True(t, m.Snapshot().Destroyed)
}

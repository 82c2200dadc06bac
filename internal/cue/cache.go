package cue

import (
	"sync"

	"github.com/mgpai22/subtrack/internal/render"
)

// Entry is a recorded cue plus its pre-built renderer representation.
// Exactly one of Text and Bitmap is set.
type Entry struct {
	Key    Key
	Cue    Cue
	Text   *render.TextEvent
	Bitmap *render.BitmapEvent
}

// Cache is the per-track, de-duplicating cue store.
type Cache struct {
	mu      sync.RWMutex
	entries map[int][]Entry
	// key -> index into entries[track]
	seen map[int]map[Key]int
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[int][]Entry),
		seen:    make(map[int]map[Key]int),
	}
}

// Record stores c unless an identical cue was already recorded for its
// track. It returns the stored entry and whether it is new. styleIndex
// resolves the cue's style name for text cues and may be nil.
func (c *Cache) Record(cue Cue, kind Kind, styleIndex func(name string) int) (Entry, bool) {
	key := cue.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	seen, ok := c.seen[cue.TrackNumber]
	if !ok {
		seen = make(map[Key]int)
		c.seen[cue.TrackNumber] = seen
	}
	if idx, ok := seen[key]; ok {
		return c.entries[cue.TrackNumber][idx], false
	}

	entry := build(key, cue, kind, styleIndex)
	seen[key] = len(c.entries[cue.TrackNumber])
	c.entries[cue.TrackNumber] = append(c.entries[cue.TrackNumber], entry)

	return entry, true
}

// All returns a track's entries in first-arrival order.
func (c *Cache) All(trackNumber int) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Entry(nil), c.entries[trackNumber]...)
}

func (c *Cache) Len(trackNumber int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[trackNumber])
}

// Total counts entries across all tracks.
func (c *Cache) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, entries := range c.entries {
		total += len(entries)
	}
	return total
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int][]Entry)
	c.seen = make(map[int]map[Key]int)
}

func build(key Key, c Cue, kind Kind, styleIndex func(string) int) Entry {
	entry := Entry{Key: key, Cue: c}

	if kind == KindBitmap {
		e := c.Extra
		entry.Bitmap = &render.BitmapEvent{
			Start:        float64(c.StartMs) / 1000,
			Duration:     float64(c.DurationMs) / 1000,
			Image:        c.ImageData,
			X:            e.X,
			Y:            e.Y,
			Width:        e.Width,
			Height:       e.Height,
			CropX:        e.CropX,
			CropY:        e.CropY,
			CropWidth:    e.CropWidth,
			CropHeight:   e.CropHeight,
			CanvasWidth:  e.CanvasWidth,
			CanvasHeight: e.CanvasHeight,
		}
		return entry
	}

	style := 0
	if styleIndex != nil {
		style = styleIndex(c.Extra.Style)
	}
	entry.Text = &render.TextEvent{
		StartMs:    c.StartMs,
		DurationMs: c.DurationMs,
		ReadOrder:  c.Extra.ReadOrder,
		Layer:      c.Extra.Layer,
		Style:      style,
		Name:       c.Extra.Name,
		MarginL:    c.Extra.MarginL,
		MarginR:    c.Extra.MarginR,
		MarginV:    c.Extra.MarginV,
		Effect:     c.Extra.Effect,
		Text:       c.Text,
	}
	return entry
}

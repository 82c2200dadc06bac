package render

import "sync"

// MemoryText records everything a TextRenderer is told. It is the backend
// used by the CLI dry runs and by tests.
type MemoryText struct {
	mu          sync.Mutex
	document    string
	events      []TextEvent
	override    *StyleOverride
	defaultFont string
	fonts       []string
	offset      float64
	resizes     int
	destroyed   bool
}

func NewMemoryText() *MemoryText {
	return &MemoryText{}
}

func (m *MemoryText) SetDocument(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// a new document resets track state like a real renderer does
	m.document = content
	m.events = nil
	m.offset = 0
}

func (m *MemoryText) AppendEvent(event TextEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MemoryText) SetStyleOverride(style *StyleOverride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if style == nil {
		m.override = nil
		return
	}
	s := *style
	m.override = &s
}

func (m *MemoryText) SetDefaultFont(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultFont = name
}

func (m *MemoryText) RegisterFont(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fonts = append(m.fonts, url)
}

func (m *MemoryText) SetTimeOffset(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = seconds
}

func (m *MemoryText) Resize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizes++
}

func (m *MemoryText) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.document = ""
	m.events = nil
	m.override = nil
}

func (m *MemoryText) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.document = ""
	m.events = nil
	m.override = nil
	m.destroyed = true
}

// point-in-time copy of a MemoryText
type TextSnapshot struct {
	Document    string
	Events      []TextEvent
	Override    *StyleOverride
	DefaultFont string
	Fonts       []string
	Offset      float64
	Resizes     int
	Destroyed   bool
}

func (m *MemoryText) Snapshot() TextSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := TextSnapshot{
		Document:    m.document,
		Events:      append([]TextEvent(nil), m.events...),
		DefaultFont: m.defaultFont,
		Fonts:       append([]string(nil), m.fonts...),
		Offset:      m.offset,
		Resizes:     m.resizes,
		Destroyed:   m.destroyed,
	}
	if m.override != nil {
		o := *m.override
		snap.Override = &o
	}
	return snap
}

// MemoryBitmap records everything a BitmapRenderer is told.
type MemoryBitmap struct {
	mu        sync.Mutex
	events    []BitmapEvent
	offset    float64
	resizes   int
	destroyed bool
}

func NewMemoryBitmap() *MemoryBitmap {
	return &MemoryBitmap{}
}

func (m *MemoryBitmap) AppendEvent(event BitmapEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MemoryBitmap) SetTimeOffset(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = seconds
}

func (m *MemoryBitmap) Resize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizes++
}

func (m *MemoryBitmap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *MemoryBitmap) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.destroyed = true
}

// point-in-time copy of a MemoryBitmap
type BitmapSnapshot struct {
	Events    []BitmapEvent
	Offset    float64
	Resizes   int
	Destroyed bool
}

func (m *MemoryBitmap) Snapshot() BitmapSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return BitmapSnapshot{
		Events:    append([]BitmapEvent(nil), m.events...),
		Offset:    m.offset,
		Resizes:   m.resizes,
		Destroyed: m.destroyed,
	}
}

var (
	_ TextRenderer   = (*MemoryText)(nil)
	_ BitmapRenderer = (*MemoryBitmap)(nil)
)

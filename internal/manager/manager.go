// Package manager is the subtitle manager: it owns the track registry, the
// cue cache and both rendering backends, and decides which backend is live.
package manager

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/cue"
	"github.com/mgpai22/subtrack/internal/loader"
	"github.com/mgpai22/subtrack/internal/logging"
	"github.com/mgpai22/subtrack/internal/metrics"
	"github.com/mgpai22/subtrack/internal/render"
	"github.com/mgpai22/subtrack/internal/selection"
	"github.com/mgpai22/subtrack/internal/style"
	"github.com/mgpai22/subtrack/internal/timing"
	"github.com/mgpai22/subtrack/internal/track"
)

var ErrDestroyed = errors.New("subtitle manager destroyed")

// TrackInfo is the container metadata record for an embedded track.
type TrackInfo = track.Info

// FileTrackInfo describes an external subtitle file.
type FileTrackInfo = track.FileDescriptor

type (
	TextFactory   func() (render.TextRenderer, error)
	BitmapFactory func() (render.BitmapRenderer, error)
)

// SettingsStore persists settings changes made through the manager.
type SettingsStore interface {
	Save(config.Settings) error
}

type Options struct {
	// required
	NewText   TextFactory
	NewBitmap BitmapFactory

	Settings  config.Settings
	Store     SettingsStore
	Fetcher   loader.Fetcher
	Converter loader.Converter
	Fonts     style.FontResolver

	Logger  *logging.Logger
	Metrics *metrics.Metrics

	OnSelectionChange func(trackNumber int)
	OnTracksLoaded    func(tracks []track.Track)
}

type StateKind int

const (
	StateNoTrack StateKind = iota
	StateEmbeddedText
	StateEmbeddedBitmap
	StateFile
)

func (k StateKind) String() string {
	switch k {
	case StateEmbeddedText:
		return "embedded-text"
	case StateEmbeddedBitmap:
		return "embedded-bitmap"
	case StateFile:
		return "file"
	default:
		return "none"
	}
}

// State is the current selection. Loading is only meaningful for StateFile.
type State struct {
	Kind        StateKind
	TrackNumber int
	Loading     bool
}

var noTrack = State{Kind: StateNoTrack, TrackNumber: track.None}

type Manager struct {
	opts    Options
	id      string
	log     *logging.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	registry *track.Registry
	cues     *cue.Cache
	loader   *loader.Loader
	timing   *timing.Controller
	fonts    *style.Fonts
	settings config.Settings
	text     render.TextRenderer
	bitmap   render.BitmapRenderer
	state    State
	// bumped on every selection change; file loads carry the value they
	// started with and are dropped on mismatch
	generation  uint64
	defaultDone bool
	destroyed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lmu          sync.Mutex
	listeners    []subscription
	nextListener int
}

func New(opts Options) (*Manager, error) {
	if opts.NewText == nil {
		return nil, errors.New("text renderer factory is required")
	}
	if opts.NewBitmap == nil {
		return nil, errors.New("bitmap renderer factory is required")
	}

	id := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("session", id)

	registry := track.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		opts:     opts,
		id:       id,
		log:      log,
		metrics:  opts.Metrics,
		registry: registry,
		cues:     cue.NewCache(),
		loader: &loader.Loader{
			Registry:  registry,
			Fetcher:   opts.Fetcher,
			Converter: opts.Converter,
			Logger:    log,
			Metrics:   opts.Metrics,
		},
		timing:   timing.NewController(opts.Settings.SubtitleDelay),
		fonts:    style.NewFonts(opts.Fonts),
		settings: opts.Settings,
		state:    noTrack,
		ctx:      ctx,
		cancel:   cancel,
	}

	log.Debugw("subtitle manager created", "delay_s", opts.Settings.SubtitleDelay)
	return m, nil
}

// ID identifies this manager instance in logs.
func (m *Manager) ID() string {
	return m.id
}

// AddEmbeddedTrack registers a track advertised by the container. The
// bitmap backend is created with the first bitmap track.
func (m *Manager) AddEmbeddedTrack(info TrackInfo) (track.Track, error) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return track.Track{}, ErrDestroyed
	}

	t, err := m.registry.AddEmbedded(info)
	if err != nil {
		m.mu.Unlock()
		return track.Track{}, err
	}
	if t.Origin == track.OriginEmbeddedBitmap {
		if err := m.ensureBitmapLocked(); err != nil {
			m.mu.Unlock()
			return t, err
		}
	}

	m.log.Infow("embedded subtitle track added",
		"track", t.Number,
		"origin", t.Origin.String(),
		"language", t.Language,
		"codec", t.CodecID,
		"styles", len(t.Styles),
	)
	events := []Event{TrackAdded{Track: t}, TracksLoaded{Tracks: m.registry.List()}}
	m.mu.Unlock()

	m.dispatch(events)
	return t, nil
}

// AddFileTrack registers an external subtitle file. Nothing is fetched until
// the track is selected.
func (m *Manager) AddFileTrack(info FileTrackInfo) (track.Track, error) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return track.Track{}, ErrDestroyed
	}

	t := m.registry.AddFile(info)
	m.log.Infow("file subtitle track added",
		"track", t.Number,
		"kind", string(t.File.Kind),
		"label", t.Label,
		"language", t.Language,
	)
	events := []Event{TrackAdded{Track: t}, TracksLoaded{Tracks: m.registry.List()}}
	m.mu.Unlock()

	m.dispatch(events)
	return t, nil
}

// AddCue records a demuxed cue and, when it is new and its track is live,
// appends it to that backend. It reports whether the cue was new.
func (m *Manager) AddCue(c cue.Cue) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return false, ErrDestroyed
	}

	t, ok := m.registry.Get(c.TrackNumber)
	if !ok {
		return false, errors.Wrapf(track.ErrNotFound, "cue for track %d", c.TrackNumber)
	}

	kind := cue.KindText
	if t.Origin == track.OriginEmbeddedBitmap {
		kind = cue.KindBitmap
	}
	entry, isNew := m.cues.Record(c, kind, t.StyleIndex)
	m.metrics.RecordCue(kind.String(), isNew)

	if !isNew || m.state.TrackNumber != c.TrackNumber {
		return isNew, nil
	}

	switch {
	case m.state.Kind == StateEmbeddedText && entry.Text != nil:
		m.text.AppendEvent(*entry.Text)
	case m.state.Kind == StateEmbeddedBitmap && entry.Bitmap != nil:
		m.bitmap.AppendEvent(*entry.Bitmap)
	}
	return true, nil
}

// SelectTrack makes track n live. Unknown tracks fall back to no track.
// File tracks that are not loaded yet load in the background.
func (m *Manager) SelectTrack(n int) error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}

	m.defaultDone = true
	events, err := m.selectLocked(n)
	m.mu.Unlock()

	m.dispatch(events)
	return err
}

// SetNoTrack turns subtitles off.
func (m *Manager) SetNoTrack() error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}

	m.defaultDone = true
	m.generation++
	events := m.deselectLocked()
	m.mu.Unlock()

	m.dispatch(events)
	return nil
}

// SelectDefault runs the default-track heuristic if nothing was ever
// selected and tracks exist. It returns the chosen number, or track.None.
func (m *Manager) SelectDefault() (int, error) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return track.None, ErrDestroyed
	}
	if m.defaultDone || m.registry.Len() == 0 {
		n := m.state.TrackNumber
		m.mu.Unlock()
		return n, nil
	}
	m.defaultDone = true

	prefs := selection.ParsePreferences(m.settings.PreferredLanguage, m.settings.Blacklist)
	n := selection.Default(m.registry.List(), prefs)
	m.log.Debugw("default subtitle track chosen",
		"track", n,
		"preferred", m.settings.PreferredLanguage,
	)

	var (
		events []Event
		err    error
	)
	if n != track.None {
		events, err = m.selectLocked(n)
	}
	m.mu.Unlock()

	m.dispatch(events)
	return n, err
}

// UpdateSettings replaces the settings copy, writes it through to the store
// and reapplies delay and styling to the live track.
func (m *Manager) UpdateSettings(s config.Settings) error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}

	m.settings = s
	m.saveLocked()
	m.timing.SetDelay(s.SubtitleDelay)
	m.restyleLocked()
	m.timing.Reapply()

	events := []Event{SettingsUpdated{Settings: s}}
	m.mu.Unlock()

	m.dispatch(events)
	return nil
}

// SetDelay shifts subtitles by seconds; positive values show them later.
func (m *Manager) SetDelay(seconds float64) error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}

	m.settings.SubtitleDelay = seconds
	m.saveLocked()
	m.timing.SetDelay(seconds)
	m.log.Debugw("subtitle delay changed", "delay_s", seconds)

	events := []Event{SettingsUpdated{Settings: m.settings}}
	m.mu.Unlock()

	m.dispatch(events)
	return nil
}

func (m *Manager) Settings() config.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Tracks lists every track in ascending number order.
func (m *Manager) Tracks() []track.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}
	return m.registry.List()
}

func (m *Manager) Track(n int) (track.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return track.Track{}, false
	}
	return m.registry.Get(n)
}

func (m *Manager) SelectedTrackNumber() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.TrackNumber
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// NextTrackNumber returns the smallest track number above after, or
// track.None past the last track, so cycling passes through "off".
func (m *Manager) NextTrackNumber(after int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return track.None
	}

	for _, t := range m.registry.List() {
		if t.Number > after {
			return t.Number
		}
	}
	return track.None
}

// Resize forwards a surface size change to the backends that exist.
func (m *Manager) Resize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return ErrDestroyed
	}

	if m.text != nil {
		m.text.Resize()
	}
	if m.bitmap != nil {
		m.bitmap.Resize()
	}
	return nil
}

// Wait blocks until in-flight file loads have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Destroy tears down both backends and drops all state. Every later call
// returns ErrDestroyed. In-flight loads are cancelled and their results
// ignored.
func (m *Manager) Destroy() error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return ErrDestroyed
	}

	m.destroyed = true
	m.generation++
	m.cancel()

	if m.text != nil {
		m.text.Destroy()
		m.text = nil
	}
	if m.bitmap != nil {
		m.bitmap.Destroy()
		m.bitmap = nil
	}
	m.timing.Detach()
	m.cues.Clear()
	m.registry.Clear()
	m.fonts.Reset()
	m.metrics.ResetCachedCues()

	var events []Event
	if m.state.Kind != StateNoTrack {
		events = append(events, TrackDeselected{})
	}
	m.state = noTrack
	events = append(events, Destroyed{})

	m.log.Infow("subtitle manager destroyed")
	m.mu.Unlock()

	m.dispatch(events)

	m.lmu.Lock()
	m.listeners = nil
	m.lmu.Unlock()
	return nil
}

func (m *Manager) saveLocked() {
	if m.opts.Store == nil {
		return
	}
	if err := m.opts.Store.Save(m.settings); err != nil {
		m.log.Warnw("failed to save subtitle settings", "error", err)
	}
}

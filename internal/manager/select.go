package manager

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subtrack/internal/style"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/mgpai22/subtrack/internal/track"
)

// selectLocked switches to track n. The outgoing backend is always cleared
// before the incoming one is populated.
func (m *Manager) selectLocked(n int) ([]Event, error) {
	// reselecting a file that is still loading keeps the pending load
	if m.state.Kind == StateFile && m.state.TrackNumber == n && m.state.Loading {
		return nil, nil
	}
	m.generation++

	t, ok := m.registry.Get(n)
	if !ok {
		m.log.Errorw("subtitle track not found", "track", n)
		events := []Event{Alert{
			Severity: SeverityError,
			Message:  fmt.Sprintf("subtitle track %d not found", n),
		}}
		events = append(events, m.deselectLocked()...)
		return events, errors.Wrapf(track.ErrNotFound, "select track %d", n)
	}

	switch t.Origin {
	case track.OriginEmbeddedBitmap:
		return m.activateBitmapLocked(t)
	case track.OriginEmbeddedText:
		return m.activateTextLocked(t)
	default:
		return m.activateFileLocked(t)
	}
}

func (m *Manager) activateBitmapLocked(t track.Track) ([]Event, error) {
	if m.text != nil {
		m.text.Clear()
	}
	if err := m.ensureBitmapLocked(); err != nil {
		m.state = noTrack
		return nil, err
	}
	m.bitmap.Clear()

	replayed := 0
	for _, e := range m.cues.All(t.Number) {
		if e.Bitmap != nil {
			m.bitmap.AppendEvent(*e.Bitmap)
			replayed++
		}
	}
	m.timing.Reapply()

	m.state = State{Kind: StateEmbeddedBitmap, TrackNumber: t.Number}
	return m.selectedLocked(t, replayed), nil
}

func (m *Manager) activateTextLocked(t track.Track) ([]Event, error) {
	if m.bitmap != nil {
		m.bitmap.Clear()
	}
	if err := m.ensureTextLocked(); err != nil {
		m.state = noTrack
		return nil, err
	}

	header := t.Header
	if header == "" {
		header = subtitle.DefaultHeader()
	}
	m.text.Clear()
	m.text.SetDocument(header)
	m.applyStyleLocked(t)

	replayed := 0
	for _, e := range m.cues.All(t.Number) {
		if e.Text != nil {
			m.text.AppendEvent(*e.Text)
			replayed++
		}
	}
	m.timing.Reapply()

	m.state = State{Kind: StateEmbeddedText, TrackNumber: t.Number}
	return m.selectedLocked(t, replayed), nil
}

func (m *Manager) activateFileLocked(t track.Track) ([]Event, error) {
	if m.bitmap != nil {
		m.bitmap.Clear()
	}
	if err := m.ensureTextLocked(); err != nil {
		m.state = noTrack
		return nil, err
	}
	m.text.Clear()

	if t.File.IsLoaded {
		m.showFileLocked(t, t.File.Loaded)
		return m.selectedLocked(t, 0), nil
	}

	m.state = State{Kind: StateFile, TrackNumber: t.Number, Loading: true}
	m.log.Debugw("loading file subtitle track", "track", t.Number, "src", t.File.Src)

	gen := m.generation
	m.wg.Add(1)
	go m.loadFile(m.ctx, t.Number, gen)

	return nil, nil
}

// loadFile runs outside the lock. Its result only lands if the selection
// has not moved on since gen was taken.
func (m *Manager) loadFile(ctx context.Context, n int, gen uint64) {
	defer m.wg.Done()

	content, err := m.loader.Load(ctx, n)

	m.mu.Lock()
	if m.destroyed || m.generation != gen {
		m.mu.Unlock()
		m.log.Debugw("discarding stale file track load", "track", n)
		return
	}

	var events []Event
	if err != nil {
		m.log.Warnw("failed to load file subtitle track", "track", n, "error", err)
		events = append(events, Alert{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("could not load subtitle track %d", n),
		})
		events = append(events, m.deselectLocked()...)
	} else {
		// registry now carries the style set of the converted content
		t, _ := m.registry.Get(n)
		m.showFileLocked(t, content)
		events = m.selectedLocked(t, 0)
	}
	m.mu.Unlock()

	m.dispatch(events)
}

func (m *Manager) showFileLocked(t track.Track, content string) {
	m.text.SetDocument(content)
	m.applyStyleLocked(t)
	m.timing.Reapply()
	m.state = State{Kind: StateFile, TrackNumber: t.Number}
}

func (m *Manager) selectedLocked(t track.Track, replayed int) []Event {
	m.metrics.RecordSwitch(t.Origin.String())
	m.log.Infow("subtitle track selected",
		"track", t.Number,
		"origin", t.Origin.String(),
		"replayed_cues", replayed,
	)
	return []Event{TrackSelected{TrackNumber: t.Number, Origin: t.Origin}}
}

// deselectLocked clears both backends and enters NoTrack. The caller owns
// the generation bump.
func (m *Manager) deselectLocked() []Event {
	if m.text != nil {
		m.text.Clear()
	}
	if m.bitmap != nil {
		m.bitmap.Clear()
	}

	was := m.state
	m.state = noTrack
	if was.Kind == StateNoTrack {
		return nil
	}
	m.log.Infow("subtitles off", "previous_track", was.TrackNumber)
	return []Event{TrackDeselected{}}
}

// restyleLocked reapplies customization to a live text or loaded file track.
func (m *Manager) restyleLocked() {
	live := m.state.Kind == StateEmbeddedText ||
		(m.state.Kind == StateFile && !m.state.Loading)
	if !live {
		return
	}

	if t, ok := m.registry.Get(m.state.TrackNumber); ok {
		m.applyStyleLocked(t)
	}
}

func (m *Manager) applyStyleLocked(t track.Track) {
	override, err := style.Build(m.settings.Customization, t.SingleStyle())
	if err != nil {
		m.log.Warnw("ignoring invalid subtitle customization", "error", err)
		override = nil
	}
	m.text.SetStyleOverride(override)
	m.fonts.Apply(m.text, m.settings.Customization)
}

func (m *Manager) ensureTextLocked() error {
	if m.text != nil {
		return nil
	}
	r, err := m.opts.NewText()
	if err != nil {
		return errors.Wrap(err, "init text renderer")
	}
	m.text = r
	m.timing.Attach(r)
	m.log.Debugw("text renderer initialized")
	return nil
}

func (m *Manager) ensureBitmapLocked() error {
	if m.bitmap != nil {
		return nil
	}
	r, err := m.opts.NewBitmap()
	if err != nil {
		return errors.Wrap(err, "init bitmap renderer")
	}
	m.bitmap = r
	m.timing.Attach(r)
	m.log.Debugw("bitmap renderer initialized")
	return nil
}

package manager

import (
	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/track"
)

// Event is one of the notifications below.
type Event interface {
	event()
}

// TrackSelected fires once a track is live on its backend. For file tracks
// that is after the content has loaded.
type TrackSelected struct {
	TrackNumber int
	Origin      track.Origin
}

type TrackDeselected struct{}

type TrackAdded struct {
	Track track.Track
}

// TracksLoaded carries the full sorted track list after any registration.
type TracksLoaded struct {
	Tracks []track.Track
}

type SettingsUpdated struct {
	Settings config.Settings
}

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Alert is a user visible problem the manager recovered from.
type Alert struct {
	Severity Severity
	Message  string
}

type Destroyed struct{}

func (TrackSelected) event()   {}
func (TrackDeselected) event() {}
func (TrackAdded) event()      {}
func (TracksLoaded) event()    {}
func (SettingsUpdated) event() {}
func (Alert) event()           {}
func (Destroyed) event()       {}

// Listener receives notifications. It is never called with the manager's
// lock held, so it may call back into the manager.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) (unsubscribe func()) {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	m.nextListener++
	id := m.nextListener
	m.listeners = append(m.listeners, subscription{id: id, fn: l})

	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		for i, s := range m.listeners {
			if s.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// dispatch delivers events in order to the callback slots and listeners.
// Callers must not hold m.mu.
func (m *Manager) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}

	m.lmu.Lock()
	listeners := append([]subscription(nil), m.listeners...)
	m.lmu.Unlock()

	for _, ev := range events {
		switch e := ev.(type) {
		case TrackSelected:
			if m.opts.OnSelectionChange != nil {
				m.opts.OnSelectionChange(e.TrackNumber)
			}
		case TrackDeselected:
			if m.opts.OnSelectionChange != nil {
				m.opts.OnSelectionChange(track.None)
			}
		case TracksLoaded:
			if m.opts.OnTracksLoaded != nil {
				m.opts.OnTracksLoaded(e.Tracks)
			}
		}

		for _, s := range listeners {
			s.fn(ev)
		}
	}
}

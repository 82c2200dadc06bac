package track

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subtrack/internal/subtitle"
)

var (
	ErrDuplicate      = errors.New("track number already registered")
	ErrReservedNumber = errors.New("track number is in the file track range")
	ErrNotFound       = errors.New("track not found")
)

// Registry holds every known track keyed by number.
type Registry struct {
	mu          sync.RWMutex
	tracks      map[int]*Track
	maxEmbedded int
	nextFile    int
}

func NewRegistry() *Registry {
	return &Registry{
		tracks:      make(map[int]*Track),
		maxEmbedded: -1,
		nextFile:    FileTrackBase,
	}
}

// AddEmbedded registers a container track, classifying it by codec id.
func (r *Registry) AddEmbedded(info Info) (Track, error) {
	if info.Number < 0 {
		return Track{}, errors.Newf("invalid track number %d", info.Number)
	}
	if info.Number >= FileTrackBase {
		return Track{}, errors.Wrapf(ErrReservedNumber, "track %d", info.Number)
	}

	t := &Track{
		Number:      info.Number,
		Origin:      OriginEmbeddedText,
		Language:    info.Language,
		LanguageTag: info.LanguageTag,
		Label:       info.Name,
		Forced:      info.Forced,
		Default:     info.Default,
		CodecID:     info.CodecID,
	}
	if IsBitmapCodec(info.CodecID) {
		t.Origin = OriginEmbeddedBitmap
	} else {
		t.Header = info.HeaderData
		// headerless tracks are shown under the default header
		styleSource := info.HeaderData
		if styleSource == "" {
			styleSource = subtitle.DefaultHeader()
		}
		t.Styles = subtitle.StyleNames(styleSource)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tracks[t.Number]; ok {
		return Track{}, errors.Wrapf(ErrDuplicate, "track %d", t.Number)
	}
	r.tracks[t.Number] = t
	if t.Number > r.maxEmbedded {
		r.maxEmbedded = t.Number
	}

	return *t, nil
}

// AddFile registers a file track under the next free file number.
func (r *Registry) AddFile(desc FileDescriptor) Track {
	kind := desc.Kind
	if kind == "" {
		kind = FileForeign
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	number := r.nextFile
	if r.maxEmbedded+1 > number {
		number = r.maxEmbedded + 1
	}
	r.nextFile = number + 1

	t := &Track{
		Number:   number,
		Origin:   OriginFile,
		Language: desc.Language,
		Label:    desc.Label,
		Default:  desc.Default,
		File: FileSource{
			Kind:    kind,
			Src:     desc.Src,
			Content: desc.Content,
		},
	}
	r.tracks[number] = t

	return *t
}

// SetLoaded memoizes converted file content and refreshes the style set.
func (r *Registry) SetLoaded(number int, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tracks[number]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %d", number)
	}
	if t.Origin != OriginFile {
		return errors.Newf("track %d is not a file track", number)
	}

	t.File.Loaded = content
	t.File.IsLoaded = true
	t.Styles = subtitle.StyleNames(content)

	return nil
}

func (r *Registry) Get(number int) (Track, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tracks[number]
	if !ok {
		return Track{}, false
	}
	return *t, true
}

// List returns all tracks sorted by ascending number.
func (r *Registry) List() []Track {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := make([]Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		tracks = append(tracks, *t)
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Number < tracks[j].Number
	})
	return tracks
}

// HasBitmap reports whether any bitmap track is registered.
func (r *Registry) HasBitmap() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tracks {
		if t.Origin == OriginEmbeddedBitmap {
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracks)
}

// Clear drops every track. Numbering is not reset.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks = make(map[int]*Track)
}

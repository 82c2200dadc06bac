package style

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/render"
)

// DefaultFont is the renderer's built-in fallback face.
const DefaultFont = "Liberation Sans"

// fixed layout of the override, bottom centre
const (
	alignmentBottomCenter = 2
	borderStyleOutline    = 1
	marginL               = 10
	marginR               = 10
	marginV               = 20
)

// Color packs a 6 digit hex RGB string and an opacity in [0,1] into the
// renderer's 0xRRGGBBAA layout. AA is transparency: 0 is fully opaque.
func Color(hex string, opacity float64) (uint32, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, errors.Newf("invalid color %q: want 6 hex digits", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid color %q", hex)
	}

	opacity = math.Max(0, math.Min(1, opacity))
	alpha := uint32(math.Round((1 - opacity) * 255))

	return uint32(rgb)<<8 | alpha, nil
}

// Build maps customization settings onto a renderer override. It returns nil
// when customization is off or when the active track is not safe to override.
func Build(c config.Customization, safe bool) (*render.StyleOverride, error) {
	if !c.Enabled || !safe {
		return nil, nil
	}

	primary, err := Color(c.PrimaryColor, c.Opacity)
	if err != nil {
		return nil, errors.Wrap(err, "primary color")
	}
	outline, err := Color(c.OutlineColor, c.Opacity)
	if err != nil {
		return nil, errors.Wrap(err, "outline color")
	}
	shadow, err := Color(c.ShadowColor, c.Opacity)
	if err != nil {
		return nil, errors.Wrap(err, "shadow color")
	}

	font := c.FontName
	if font == "" {
		font = DefaultFont
	}

	return &render.StyleOverride{
		FontName:        font,
		FontSize:        c.FontSize,
		PrimaryColour:   primary,
		SecondaryColour: primary,
		OutlineColour:   outline,
		BackColour:      shadow,
		ScaleX:          100,
		ScaleY:          100,
		BorderStyle:     borderStyleOutline,
		Outline:         c.OutlineWidth,
		Shadow:          c.ShadowDepth,
		Alignment:       alignmentBottomCenter,
		MarginL:         marginL,
		MarginR:         marginR,
		MarginV:         marginV,
	}, nil
}

// FontResolver maps a font name to an asset URL. An empty result means the
// font is unknown.
type FontResolver func(name string) string

// Fonts tracks the font URLs registered with a text renderer this session.
type Fonts struct {
	mu         sync.Mutex
	resolve    FontResolver
	registered map[string]bool
}

func NewFonts(resolve FontResolver) *Fonts {
	return &Fonts{
		resolve:    resolve,
		registered: make(map[string]bool),
	}
}

// Apply sets the renderer's default font from the customization, registering
// the resolved URL at most once.
func (f *Fonts) Apply(r render.TextRenderer, c config.Customization) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !c.Enabled || c.FontName == "" || f.resolve == nil {
		r.SetDefaultFont(DefaultFont)
		return
	}

	url := f.resolve(c.FontName)
	if url == "" {
		r.SetDefaultFont(DefaultFont)
		return
	}

	if !f.registered[url] {
		r.RegisterFont(url)
		f.registered[url] = true
	}
	r.SetDefaultFont(c.FontName)
}

// Registered returns the URLs registered so far.
func (f *Fonts) Registered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := make([]string, 0, len(f.registered))
	for url := range f.registered {
		urls = append(urls, url)
	}
	return urls
}

func (f *Fonts) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = make(map[string]bool)
}

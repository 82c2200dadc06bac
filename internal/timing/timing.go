package timing

import (
	"sync"

	"github.com/mgpai22/subtrack/internal/render"
)

// Controller owns the subtitle delay and keeps every attached backend's
// clock offset in line with it.
type Controller struct {
	mu       sync.Mutex
	delay    float64
	backends []render.Offsetter
}

func NewController(delay float64) *Controller {
	return &Controller{delay: delay}
}

// SetDelay stores seconds and pushes the negated value, so a positive
// delay moves the renderer clock back and subtitles show later.
func (c *Controller) SetDelay(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = seconds
	c.applyLocked()
}

func (c *Controller) Delay() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delay
}

// Offset is the value handed to backends.
func (c *Controller) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return -c.delay
}

// Attach adds a backend and applies the current offset to it right away.
// Attaching a backend twice only reapplies.
func (c *Controller) Attach(b render.Offsetter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.backends {
		if existing == b {
			b.SetTimeOffset(-c.delay)
			return
		}
	}
	c.backends = append(c.backends, b)
	b.SetTimeOffset(-c.delay)
}

// Reapply pushes the offset again, after anything that resets backend clocks.
func (c *Controller) Reapply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked()
}

// Detach forgets every backend.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backends = nil
}

func (c *Controller) applyLocked() {
	for _, b := range c.backends {
		b.SetTimeOffset(-c.delay)
	}
}

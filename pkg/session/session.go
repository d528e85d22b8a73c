// Package session provides explicit object retention for rendering sessions.
//
// A rendering session frequently builds short-lived annotation objects (tick
// marks, labels, guide lines) whose only consumer is a surface flushed later.
// Instead of relying on a cache's incidental retention to keep such objects
// alive, a Render session is an explicit registry the caller holds for the
// duration of the session: whatever is retained stays reachable until the
// session is released, full stop.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plotkit/plotkit/pkg/plot"
)

// Render is a retention registry for one rendering session.
type Render struct {
	id      string
	started time.Time

	mu       sync.Mutex
	retained []plot.Drawable
	released bool
}

// NewRender creates an empty rendering session with a fresh identifier.
func NewRender() *Render {
	return &Render{
		id:      uuid.NewString(),
		started: time.Now(),
	}
}

// ID returns the session identifier.
func (r *Render) ID() string { return r.id }

// Started returns the session creation time.
func (r *Render) Started() time.Time { return r.started }

// Retain registers drawables with the session and returns the first one, so
// construction and retention compose in one expression:
//
//	surface.Add(sess.Retain(plot.Line{X1: 0, Y1: 0.5, X2: 1, Y2: 0.5}))
func (r *Render) Retain(ds ...plot.Drawable) plot.Drawable {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.released {
		r.retained = append(r.retained, ds...)
	}
	if len(ds) == 0 {
		return nil
	}
	return ds[0]
}

// Len returns the number of retained drawables.
func (r *Render) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.retained)
}

// Drawables returns the retained drawables in retention order.
func (r *Render) Drawables() []plot.Drawable {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]plot.Drawable, len(r.retained))
	copy(out, r.retained)
	return out
}

// AddTo attaches every retained drawable to a surface.
func (r *Render) AddTo(s *plot.Surface) {
	s.Add(r.Drawables()...)
}

// Release drops all retained drawables. Further Retain calls are ignored;
// the session is finished.
func (r *Render) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retained = nil
	r.released = true
}

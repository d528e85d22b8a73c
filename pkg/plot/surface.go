package plot

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/observability"
)

// Default surface geometry.
const (
	DefaultName   = "c1"
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Surface is a named drawing target that aggregates drawables and rasters
// them on Flush.
//
// A surface carries a close signal: Close delivers it, Done exposes it, and
// Wait blocks on it. The signal is what a user-driven "window closed" event
// maps to; in headless use the caller closes the surface programmatically.
type Surface struct {
	name   string
	width  int
	height int

	mu       sync.Mutex
	children []Drawable
	img      image.Image

	closeOnce sync.Once
	done      chan struct{}
}

// SurfaceOption configures a new surface.
type SurfaceOption func(*Surface)

// WithName sets the surface name (default "c1").
func WithName(name string) SurfaceOption {
	return func(s *Surface) { s.name = name }
}

// WithSize sets the pixel dimensions (default 800x600).
// Non-positive values keep the defaults.
func WithSize(width, height int) SurfaceOption {
	return func(s *Surface) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// NewSurface creates an empty surface.
func NewSurface(opts ...SurfaceOption) *Surface {
	s := &Surface{
		name:   DefaultName,
		width:  DefaultWidth,
		height: DefaultHeight,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// Size returns the pixel dimensions.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// Add appends drawables to the surface. Children added after a Flush appear
// on the next Flush.
func (s *Surface) Add(ds ...Drawable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, ds...)
}

// Children returns the number of drawables currently attached.
func (s *Surface) Children() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children)
}

// Flush rasters all children onto a white background and retains the result
// for Image and Save.
func (s *Surface) Flush(ctx context.Context) error {
	s.mu.Lock()
	children := make([]Drawable, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	observability.Render().OnFlushStart(ctx, s.name, len(children))
	start := time.Now()

	dc := gg.NewContext(s.width, s.height)
	dc.SetColor(White.RGBA())
	dc.Clear()

	f := Frame{Width: float64(s.width), Height: float64(s.height)}
	for _, d := range children {
		d.Raster(dc, f)
	}

	s.mu.Lock()
	s.img = dc.Image()
	s.mu.Unlock()

	observability.Render().OnFlushComplete(ctx, s.name, time.Since(start), nil)
	return nil
}

// Image returns the most recent Flush result, or nil before the first Flush.
func (s *Surface) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Save persists the surface to path. The format is chosen by extension:
// .png, .jpg/.jpeg (raster, flushing first if needed) or .svg (vector,
// re-emitted from the children). Unknown extensions are an error.
func (s *Surface) Save(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	var data []byte
	var err error
	switch ext {
	case ".png", ".jpg", ".jpeg":
		data, err = s.encodeRaster(ctx, ext)
	case ".svg":
		data = s.encodeSVG()
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (png, jpg, svg)", ext)
	}
	if err != nil {
		observability.Render().OnSave(ctx, s.name, path, 0, err)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		werr := errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
		observability.Render().OnSave(ctx, s.name, path, 0, werr)
		return werr
	}
	observability.Render().OnSave(ctx, s.name, path, len(data), nil)
	return nil
}

func (s *Surface) encodeRaster(ctx context.Context, ext string) ([]byte, error) {
	if s.Image() == nil {
		if err := s.Flush(ctx); err != nil {
			return nil, err
		}
	}
	img := s.Image()

	var out bytes.Buffer
	switch ext {
	case ".png":
		if err := png.Encode(&out, img); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
		}
	default:
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 92}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode jpeg")
		}
	}
	return out.Bytes(), nil
}

// Close delivers the surface's close signal. It is safe to call multiple
// times and from any goroutine; only the first call has an effect.
func (s *Surface) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done returns the channel closed when the surface receives its close signal.
func (s *Surface) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the surface is closed or ctx is cancelled. A context
// deadline is the way to bound the wait; without one the wait is unbounded,
// matching an interactive "until the user closes the window" flow.
func (s *Surface) Wait(ctx context.Context) error {
	observability.Render().OnWaitStart(ctx, s.name)
	start := time.Now()

	select {
	case <-s.done:
		observability.Render().OnWaitComplete(ctx, s.name, time.Since(start), nil)
		return nil
	case <-ctx.Done():
		err := ctx.Err()
		observability.Render().OnWaitComplete(ctx, s.name, time.Since(start), err)
		return err
	}
}

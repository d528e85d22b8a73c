package plot

import (
	"context"
)

// ShowOption configures a Show call.
type ShowOption func(*showConfig)

type showConfig struct {
	surfaceOpts []SurfaceOption
	output      string
	block       bool
	display     func(s *Surface)
}

// WithSurface passes surface options (name, size) through to the created
// surface.
func WithSurface(opts ...SurfaceOption) ShowOption {
	return func(c *showConfig) { c.surfaceOpts = append(c.surfaceOpts, opts...) }
}

// WithOutput persists the flushed surface to path before any blocking starts.
func WithOutput(path string) ShowOption {
	return func(c *showConfig) { c.output = path }
}

// WithBlock controls whether Show waits for the surface's close signal after
// flushing and persisting. The default is true; with false, Show returns
// immediately and the caller owns the surface's further lifetime.
func WithBlock(block bool) ShowOption {
	return func(c *showConfig) { c.block = block }
}

// WithDisplay registers a presenter started (in its own goroutine) right
// before a blocking wait. The presenter shows the surface to the user and is
// expected to call Surface.Close when the user dismisses it. Without a
// presenter a blocking Show only ends through close or context cancellation.
func WithDisplay(display func(s *Surface)) ShowOption {
	return func(c *showConfig) { c.display = display }
}

// Show runs the deferred-render flow: create a surface, let populate fill it,
// then flush, persist when an output path is configured, and finally block
// until the surface closes (unless WithBlock(false)).
//
// Ordering is guaranteed: the flush and the persisted artifact always come
// before the wait, so the output exists on disk whether or not anyone ever
// closes the surface. The surface is returned in both modes so non-blocking
// callers can keep driving it.
func Show(ctx context.Context, populate func(s *Surface) error, opts ...ShowOption) (*Surface, error) {
	cfg := showConfig{block: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := NewSurface(cfg.surfaceOpts...)

	if err := populate(s); err != nil {
		return nil, err
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	if cfg.output != "" {
		if err := s.Save(ctx, cfg.output); err != nil {
			return nil, err
		}
	}
	if !cfg.block {
		return s, nil
	}

	if cfg.display != nil {
		go cfg.display(s)
	}
	if err := s.Wait(ctx); err != nil {
		return s, err
	}
	return s, nil
}

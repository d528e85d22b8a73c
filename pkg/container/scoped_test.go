package container

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/observability"
)

func TestWithClosesOnceOnSuccess(t *testing.T) {
	hooks := &tally{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	err := With(ctx, path, ModeRecreate, func(ctx context.Context, c *Container) error {
		return c.Put(ctx, "hits", counter{Entries: 1})
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	opens, closes, _ := hooks.counts()
	if opens != 1 || closes != 1 {
		t.Errorf("opens = %d, closes = %d; want 1, 1", opens, closes)
	}
}

func TestWithClosesOnceOnError(t *testing.T) {
	hooks := &tally{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	wantErr := fmt.Errorf("population failed")
	err := With(ctx, path, ModeRecreate, func(ctx context.Context, c *Container) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("With error = %v, want the fn error unmasked", err)
	}

	_, closes, _ := hooks.counts()
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestWithClosesOnceOnPanic(t *testing.T) {
	hooks := &tally{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic should propagate out of With")
			}
		}()
		_ = With(ctx, path, ModeRecreate, func(ctx context.Context, c *Container) error {
			panic("boom")
		})
	}()

	_, closes, _ := hooks.counts()
	if closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestWithOpenFailureSkipsClose(t *testing.T) {
	hooks := &tally{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "absent.plot")

	err := With(ctx, path, ModeRead, func(ctx context.Context, c *Container) error {
		t.Error("fn should not run when open fails")
		return nil
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("With error = %v, want FILE_NOT_FOUND", err)
	}

	opens, closes, _ := hooks.counts()
	if opens != 0 || closes != 0 {
		t.Errorf("opens = %d, closes = %d; want 0, 0", opens, closes)
	}
}

func TestDoubleCloseIsAnError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	c, err := Open(ctx, path, ModeRecreate)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("second Close = %v, want CLOSED", err)
	}
}

func TestTryOpenHeldPath(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	c, err := Open(ctx, path, ModeRecreate)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := TryOpen(ctx, path, ModeUpdate); !errors.Is(err, errors.ErrCodeLocked) {
		t.Errorf("TryOpen on held path = %v, want LOCKED", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Released paths can be reopened.
	err = TryWith(ctx, path, ModeUpdate, func(ctx context.Context, c *Container) error {
		return nil
	})
	if err != nil {
		t.Errorf("TryWith after release: %v", err)
	}
}

func TestHandleReleasedAfterClose(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	c, err := Open(ctx, path, ModeRecreate)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put(ctx, "hits", counter{Entries: 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	h, err := c.Get(ctx, "hits")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Usable while the container is open.
	var got counter
	if err := h.Decode(&got); err != nil {
		t.Fatalf("Decode before close: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := h.Decode(&got); !errors.Is(err, errors.ErrCodeReleased) {
		t.Errorf("Decode after close = %v, want RELEASED", err)
	}
	if _, err := h.Bytes(); !errors.Is(err, errors.ErrCodeReleased) {
		t.Errorf("Bytes after close = %v, want RELEASED", err)
	}
	if err := h.Detach(); !errors.Is(err, errors.ErrCodeReleased) {
		t.Errorf("Detach after close = %v, want RELEASED", err)
	}

	// Identity metadata stays readable.
	if h.Name() != "hits" {
		t.Errorf("Name after close = %q, want hits", h.Name())
	}
}

func TestDetachedHandleSurvivesClose(t *testing.T) {
	hooks := &tally{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	c, err := Open(ctx, path, ModeRecreate)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put(ctx, "hits", counter{Entries: 9}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	h, err := c.Get(ctx, "hits")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := h.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if err := h.Detach(); err != nil {
		t.Fatalf("repeated Detach should be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got counter
	if err := h.Decode(&got); err != nil {
		t.Errorf("Decode on detached handle after close: %v", err)
	}
	if got.Entries != 9 {
		t.Errorf("Entries = %d, want 9", got.Entries)
	}

	_, _, detaches := hooks.counts()
	if detaches != 1 {
		t.Errorf("detaches = %d, want 1", detaches)
	}
}

func TestWithDetachedHandlesOption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.plot")

	var h *Handle
	err := With(ctx, path, ModeRecreate, func(ctx context.Context, c *Container) error {
		if err := c.Put(ctx, "hits", counter{Entries: 5}); err != nil {
			return err
		}
		var err error
		h, err = c.Get(ctx, "hits")
		return err
	}, WithDetachedHandles())
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	if !h.Detached() {
		t.Error("handle should default to detached under WithDetachedHandles")
	}
	var got counter
	if err := h.Decode(&got); err != nil {
		t.Errorf("Decode after scope exit: %v", err)
	}
	if got.Entries != 5 {
		t.Errorf("Entries = %d, want 5", got.Entries)
	}
}

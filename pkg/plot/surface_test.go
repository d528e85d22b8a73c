package plot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/plotkit/plotkit/pkg/errors"
)

func TestSurfaceDefaults(t *testing.T) {
	s := NewSurface()
	if s.Name() != "c1" {
		t.Errorf("Name = %q, want c1", s.Name())
	}
	w, h := s.Size()
	if w != 800 || h != 600 {
		t.Errorf("Size = %dx%d, want 800x600", w, h)
	}
}

func TestSurfaceOptions(t *testing.T) {
	s := NewSurface(WithName("display"), WithSize(400, 300))
	if s.Name() != "display" {
		t.Errorf("Name = %q, want display", s.Name())
	}
	w, h := s.Size()
	if w != 400 || h != 300 {
		t.Errorf("Size = %dx%d, want 400x300", w, h)
	}

	// Non-positive dimensions keep defaults.
	s = NewSurface(WithSize(0, -1))
	w, h = s.Size()
	if w != DefaultWidth || h != DefaultHeight {
		t.Errorf("Size = %dx%d, want defaults", w, h)
	}
}

func TestFlushProducesImage(t *testing.T) {
	ctx := context.Background()
	s := NewSurface(WithSize(200, 100))
	s.Add(
		Line{X1: 0, Y1: 0, X2: 1, Y2: 1, Color: Black},
		Marker{X: 0.5, Y: 0.5, Color: Red},
	)

	if s.Image() != nil {
		t.Error("Image before Flush should be nil")
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	img := s.Image()
	if img == nil {
		t.Fatal("Image after Flush is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 100 {
		t.Errorf("image size = %dx%d, want 200x100", bounds.Dx(), bounds.Dy())
	}
}

func TestSavePNG(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.png")

	s := NewSurface(WithSize(120, 80))
	s.Add(Rect{X1: 0.2, Y1: 0.2, X2: 0.8, Y2: 0.8, Fill: Blue, Stroke: Black})

	// Save flushes implicitly when no flush happened yet.
	if err := s.Save(ctx, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat artifact: %v", err)
	}
	if info.Size() == 0 {
		t.Error("artifact is empty")
	}
}

func TestSaveSVG(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.svg")

	s := NewSurface(WithSize(120, 80))
	s.Add(
		Line{X1: 0, Y1: 0, X2: 1, Y2: 1, Color: Black},
		Label{X: 0.1, Y: 0.9, Text: "title", Color: Black},
	)

	if err := s.Save(ctx, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	svg := string(data)
	for _, want := range []string{"<svg", `viewBox="0 0 120 80"`, "<line", "title", "</svg>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestSaveUnknownFormat(t *testing.T) {
	ctx := context.Background()
	s := NewSurface()
	err := s.Save(ctx, filepath.Join(t.TempDir(), "out.bmp"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Save .bmp = %v, want INVALID_FORMAT", err)
	}
}

func TestWaitReturnsOnClose(t *testing.T) {
	s := NewSurface()

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Errorf("Wait after Close: %v", err)
	}

	// Close is idempotent.
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Error("Done channel should be closed")
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	s := NewSurface()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := s.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait = %v, want context.DeadlineExceeded", err)
	}
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/plot"
)

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}

func TestLoadScene(t *testing.T) {
	path := writeScene(t, `
title = "pt spectrum"
palette = "viridis"

[surface]
name = "c2"
width = 640
height = 480

[[histogram]]
name = "hits"
bins = 4
min = 0.0
max = 4.0
values = [0.5, 1.5, 1.7, 3.2]

[[line]]
from = [0.0, 0.5]
to = [1.0, 0.5]
width = 2.0
color = "#336699"

[[label]]
at = [0.1, 0.95]
text = "run 12"
`)

	sc, err := loadScene(path)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}

	if sc.Title != "pt spectrum" {
		t.Errorf("Title = %q, want %q", sc.Title, "pt spectrum")
	}
	if sc.Surface.Name != "c2" || sc.Surface.Width != 640 {
		t.Errorf("Surface = %+v, want name c2 width 640", sc.Surface)
	}
	if len(sc.Histograms) != 1 || len(sc.Lines) != 1 || len(sc.Labels) != 1 {
		t.Fatalf("got %d histograms, %d lines, %d labels", len(sc.Histograms), len(sc.Lines), len(sc.Labels))
	}

	drawables, err := sc.drawables()
	if err != nil {
		t.Fatalf("drawables: %v", err)
	}
	if len(drawables) != 3 {
		t.Fatalf("len(drawables) = %d, want 3", len(drawables))
	}

	hist, ok := drawables[0].(*plot.Histogram)
	if !ok {
		t.Fatalf("drawables[0] = %T, want *plot.Histogram", drawables[0])
	}
	if hist.Entries != 4 {
		t.Errorf("Entries = %d, want 4", hist.Entries)
	}
	// The viridis palette starts at dark purple, nothing like the default blue.
	if hist.Fill == plot.Blue {
		t.Error("palette fill should override the default histogram fill")
	}

	line, ok := drawables[1].(plot.Line)
	if !ok {
		t.Fatalf("drawables[1] = %T, want plot.Line", drawables[1])
	}
	if line.Width != 2.0 {
		t.Errorf("line.Width = %v, want 2.0", line.Width)
	}
}

func TestLoadSceneMissingFile(t *testing.T) {
	_, err := loadScene(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("loadScene(missing) = %v, want INVALID_SCENE", err)
	}
}

func TestSceneBadColor(t *testing.T) {
	path := writeScene(t, `
[[marker]]
at = [0.5, 0.5]
color = "purple"
`)
	sc, err := loadScene(path)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if _, err := sc.drawables(); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("drawables with bad color = %v, want INVALID_SCENE", err)
	}
}

func TestSceneBadPoint(t *testing.T) {
	path := writeScene(t, `
[[line]]
from = [0.0]
to = [1.0, 1.0]
`)
	sc, err := loadScene(path)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if _, err := sc.drawables(); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("drawables with bad point = %v, want INVALID_SCENE", err)
	}
}

func TestSceneUnknownPalette(t *testing.T) {
	path := writeScene(t, `
palette = "nope"

[[histogram]]
name = "h"
bins = 2
min = 0.0
max = 1.0
`)
	sc, err := loadScene(path)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if _, err := sc.drawables(); !errors.Is(err, errors.ErrCodePaletteNotFound) {
		t.Errorf("drawables with unknown palette = %v, want PALETTE_NOT_FOUND", err)
	}
}

func TestSceneExplicitFillWinsOverPalette(t *testing.T) {
	path := writeScene(t, `
palette = "grayscale"

[[histogram]]
name = "h"
bins = 2
min = 0.0
max = 1.0
fill = "#ff0000"
`)
	sc, err := loadScene(path)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	drawables, err := sc.drawables()
	if err != nil {
		t.Fatalf("drawables: %v", err)
	}
	hist := drawables[0].(*plot.Histogram)
	if hist.Fill.R < 0.99 || hist.Fill.G > 0.01 {
		t.Errorf("Fill = %+v, want pure red from explicit fill", hist.Fill)
	}
}

func TestDefaultOutput(t *testing.T) {
	if got := defaultOutput("scenes/run12.toml"); got != "run12.png" {
		t.Errorf("defaultOutput = %q, want run12.png", got)
	}
}

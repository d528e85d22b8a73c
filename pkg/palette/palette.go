// Package palette expands named color palettes and manages the finite pool of
// numeric color slots that drawing code refers to.
//
// Palettes are defined by a handful of anchor colors and interpolated in Lab
// space, which keeps perceived brightness even across the ramp. The slot
// table memoizes color definitions, so asking for the same components twice
// reuses the same slot instead of burning a fresh one.
package palette

import (
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/plot"
)

// anchors per palette, interpolated start to end.
var palettes = map[string][]colorful.Color{
	"rainbow": {
		{R: 0.58, G: 0.00, B: 0.83},
		{R: 0.00, G: 0.00, B: 1.00},
		{R: 0.00, G: 0.80, B: 0.20},
		{R: 1.00, G: 0.95, B: 0.00},
		{R: 1.00, G: 0.50, B: 0.00},
		{R: 0.90, G: 0.10, B: 0.10},
	},
	"viridis": {
		{R: 0.27, G: 0.00, B: 0.33},
		{R: 0.23, G: 0.32, B: 0.55},
		{R: 0.13, G: 0.57, B: 0.55},
		{R: 0.37, G: 0.79, B: 0.38},
		{R: 0.99, G: 0.91, B: 0.15},
	},
	"sunset": {
		{R: 0.99, G: 0.88, B: 0.55},
		{R: 0.98, G: 0.60, B: 0.35},
		{R: 0.86, G: 0.30, B: 0.35},
		{R: 0.45, G: 0.15, B: 0.42},
	},
	"ocean": {
		{R: 0.90, G: 0.96, B: 0.98},
		{R: 0.45, G: 0.75, B: 0.86},
		{R: 0.12, G: 0.44, B: 0.71},
		{R: 0.03, G: 0.19, B: 0.42},
	},
	"grayscale": {
		{R: 0.95, G: 0.95, B: 0.95},
		{R: 0.05, G: 0.05, B: 0.05},
	},
}

// Names returns the available palette names, sorted.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Colors expands the named palette into n colors with components in [0,1].
// The alpha component is always 1. Unknown names fail with PALETTE_NOT_FOUND;
// n must be positive.
func Colors(name string, n int) ([]plot.Color, error) {
	anchors, ok := palettes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodePaletteNotFound, "unknown palette %q", name)
	}
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidName, "palette size must be positive, got %d", n)
	}

	out := make([]plot.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c := sample(anchors, t)
		out[i] = plot.Color{R: c.R, G: c.G, B: c.B, A: 1}
	}
	return out, nil
}

// sample interpolates the anchor ramp at t in [0,1] using Lab blending.
func sample(anchors []colorful.Color, t float64) colorful.Color {
	if len(anchors) == 1 || t <= 0 {
		return anchors[0]
	}
	if t >= 1 {
		return anchors[len(anchors)-1]
	}

	segments := float64(len(anchors) - 1)
	pos := t * segments
	i := int(pos)
	if i >= len(anchors)-1 {
		i = len(anchors) - 2
	}
	frac := pos - float64(i)
	return anchors[i].BlendLab(anchors[i+1], frac).Clamped()
}

package cli

import (
	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/palette"
	"github.com/plotkit/plotkit/pkg/plot"
)

// =============================================================================
// Scene Schema
// =============================================================================

// scene is the TOML representation of a renderable scene.
//
// Coordinates in a scene file are normalized to [0,1] with the origin at the
// bottom-left, matching the drawable types. Colors are hex strings ("#2a6099");
// an empty color keeps the drawable's default.
type scene struct {
	Title   string       `toml:"title"`
	Palette string       `toml:"palette"`
	Surface sceneSurface `toml:"surface"`

	Histograms []sceneHistogram `toml:"histogram"`
	Lines      []sceneLine      `toml:"line"`
	Rects      []sceneRect      `toml:"rect"`
	Markers    []sceneMarker    `toml:"marker"`
	Labels     []sceneLabel     `toml:"label"`
}

type sceneSurface struct {
	Name   string `toml:"name"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type sceneHistogram struct {
	Name   string    `toml:"name"`
	Bins   int       `toml:"bins"`
	Min    float64   `toml:"min"`
	Max    float64   `toml:"max"`
	Values []float64 `toml:"values"`
	Fill   string    `toml:"fill"`
	Line   string    `toml:"line"`
}

type sceneLine struct {
	From  []float64 `toml:"from"`
	To    []float64 `toml:"to"`
	Width float64   `toml:"width"`
	Color string    `toml:"color"`
}

type sceneRect struct {
	From   []float64 `toml:"from"`
	To     []float64 `toml:"to"`
	Fill   string    `toml:"fill"`
	Stroke string    `toml:"stroke"`
}

type sceneMarker struct {
	At    []float64 `toml:"at"`
	Style string    `toml:"style"`
	Size  float64   `toml:"size"`
	Color string    `toml:"color"`
}

type sceneLabel struct {
	At    []float64 `toml:"at"`
	Text  string    `toml:"text"`
	Size  float64   `toml:"size"`
	Color string    `toml:"color"`
}

// =============================================================================
// Loading
// =============================================================================

// loadScene parses the TOML scene file at path.
func loadScene(path string) (*scene, error) {
	var sc scene
	if _, err := toml.DecodeFile(path, &sc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse scene %s", path)
	}
	return &sc, nil
}

// surfaceOptions converts the [surface] block into surface options.
func (sc *scene) surfaceOptions() []plot.SurfaceOption {
	var opts []plot.SurfaceOption
	if sc.Surface.Name != "" {
		opts = append(opts, plot.WithName(sc.Surface.Name))
	}
	if sc.Surface.Width > 0 || sc.Surface.Height > 0 {
		opts = append(opts, plot.WithSize(sc.Surface.Width, sc.Surface.Height))
	}
	return opts
}

// drawables builds the scene's drawable list.
//
// When a palette is named, histograms without an explicit fill are colored
// from it in declaration order.
func (sc *scene) drawables() ([]plot.Drawable, error) {
	var fills []plot.Color
	if sc.Palette != "" && len(sc.Histograms) > 0 {
		var err error
		fills, err = palette.Colors(sc.Palette, len(sc.Histograms))
		if err != nil {
			return nil, err
		}
	}

	var out []plot.Drawable

	for i, h := range sc.Histograms {
		hist := plot.NewHistogram(h.Name, h.Bins, h.Min, h.Max)
		for _, v := range h.Values {
			hist.Add(v)
		}
		if h.Fill != "" {
			fill, err := parseColor(h.Fill)
			if err != nil {
				return nil, err
			}
			hist.Fill = fill
		} else if fills != nil {
			hist.Fill = fills[i]
		}
		if h.Line != "" {
			line, err := parseColor(h.Line)
			if err != nil {
				return nil, err
			}
			hist.Line = line
		}
		out = append(out, hist)
	}

	for _, l := range sc.Lines {
		x1, y1, err := point(l.From, "line.from")
		if err != nil {
			return nil, err
		}
		x2, y2, err := point(l.To, "line.to")
		if err != nil {
			return nil, err
		}
		c, err := parseColorDefault(l.Color, plot.Black)
		if err != nil {
			return nil, err
		}
		out = append(out, plot.Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: l.Width, Color: c})
	}

	for _, r := range sc.Rects {
		x1, y1, err := point(r.From, "rect.from")
		if err != nil {
			return nil, err
		}
		x2, y2, err := point(r.To, "rect.to")
		if err != nil {
			return nil, err
		}
		fill, err := parseColorDefault(r.Fill, plot.Color{})
		if err != nil {
			return nil, err
		}
		stroke, err := parseColorDefault(r.Stroke, plot.Black)
		if err != nil {
			return nil, err
		}
		out = append(out, plot.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2, Fill: fill, Stroke: stroke})
	}

	for _, m := range sc.Markers {
		x, y, err := point(m.At, "marker.at")
		if err != nil {
			return nil, err
		}
		c, err := parseColorDefault(m.Color, plot.Black)
		if err != nil {
			return nil, err
		}
		out = append(out, plot.Marker{X: x, Y: y, Style: plot.MarkerStyle(m.Style), Size: m.Size, Color: c})
	}

	for _, l := range sc.Labels {
		x, y, err := point(l.At, "label.at")
		if err != nil {
			return nil, err
		}
		c, err := parseColorDefault(l.Color, plot.Black)
		if err != nil {
			return nil, err
		}
		out = append(out, plot.Label{X: x, Y: y, Text: l.Text, Size: l.Size, Color: c})
	}

	return out, nil
}

// point validates a two-element coordinate array.
func point(v []float64, field string) (x, y float64, err error) {
	if len(v) != 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidScene, "%s must be [x, y], got %d values", field, len(v))
	}
	return v[0], v[1], nil
}

// parseColor converts a hex color string into a drawable color.
func parseColor(s string) (plot.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return plot.Color{}, errors.New(errors.ErrCodeInvalidScene, "invalid color %q (expected hex like #2a6099)", s)
	}
	return plot.Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// parseColorDefault is parseColor with a fallback for the empty string.
func parseColorDefault(s string, def plot.Color) (plot.Color, error) {
	if s == "" {
		return def, nil
	}
	return parseColor(s)
}

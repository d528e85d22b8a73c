// Package plot implements drawing surfaces and the deferred render-and-block
// flow built on top of them.
//
// A Surface aggregates Drawable children and rasters them on Flush. Show wraps
// the whole flow: create a surface, let the caller populate it, flush, persist
// to an output path when one is configured, then optionally block until the
// surface receives its close signal. Flush and persist always happen before
// the block, so the artifact exists on disk before anyone waits.
//
// Coordinates are normalized: drawables address the surface in [0,1] on both
// axes with the origin at the bottom-left, and a Frame maps them to pixels at
// flush time. This keeps stored drawables independent of surface size.
package plot

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Frame maps normalized [0,1] coordinates onto a pixel viewport.
type Frame struct {
	Width  float64
	Height float64
}

// X converts a normalized x coordinate to pixels.
func (f Frame) X(u float64) float64 { return u * f.Width }

// Y converts a normalized y coordinate to pixels. The normalized origin is at
// the bottom-left, while raster origin is top-left, so the axis flips here.
func (f Frame) Y(v float64) float64 { return (1 - v) * f.Height }

// Color is an RGBA color with components in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// RGBA returns the color as a standard library color with 8-bit channels.
func (c Color) RGBA() color.RGBA {
	clamp := func(v float64) uint8 {
		return uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255))
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}

// CSS returns the color in CSS rgba() notation for SVG output.
func (c Color) CSS() string {
	rgba := c.RGBA()
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", rgba.R, rgba.G, rgba.B, math.Min(math.Max(c.A, 0), 1))
}

// Common colors.
var (
	Black = Color{0, 0, 0, 1}
	White = Color{1, 1, 1, 1}
	Red   = Color{0.84, 0.22, 0.20, 1}
	Blue  = Color{0.22, 0.42, 0.84, 1}
	Gray  = Color{0.55, 0.55, 0.55, 1}
)

// Drawable is an object a surface can render.
//
// Implementations raster themselves into a gg context and emit an SVG
// fragment, both through the same normalized frame. All drawables in this
// package serialize to JSON so containers can persist them.
type Drawable interface {
	// Raster draws the object into dc using f to map coordinates.
	Raster(dc *gg.Context, f Frame)

	// WriteSVG appends the object's SVG representation to buf.
	WriteSVG(buf *bytes.Buffer, f Frame)
}

// Line is a straight segment between two normalized points.
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Width float64 `json:"width,omitempty"`
	Color Color   `json:"color"`
}

func (l Line) lineWidth() float64 {
	if l.Width <= 0 {
		return 1
	}
	return l.Width
}

// Raster implements Drawable.
func (l Line) Raster(dc *gg.Context, f Frame) {
	dc.SetColor(l.Color.RGBA())
	dc.SetLineWidth(l.lineWidth())
	dc.DrawLine(f.X(l.X1), f.Y(l.Y1), f.X(l.X2), f.Y(l.Y2))
	dc.Stroke()
}

// WriteSVG implements Drawable.
func (l Line) WriteSVG(buf *bytes.Buffer, f Frame) {
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		f.X(l.X1), f.Y(l.Y1), f.X(l.X2), f.Y(l.Y2), l.Color.CSS(), l.lineWidth())
}

// Rect is an axis-aligned rectangle spanning two normalized corners.
type Rect struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Fill   Color   `json:"fill"`
	Stroke Color   `json:"stroke"`
}

func (r Rect) bounds(f Frame) (x, y, w, h float64) {
	x1, x2 := f.X(math.Min(r.X1, r.X2)), f.X(math.Max(r.X1, r.X2))
	y1, y2 := f.Y(math.Max(r.Y1, r.Y2)), f.Y(math.Min(r.Y1, r.Y2))
	return x1, y1, x2 - x1, y2 - y1
}

// Raster implements Drawable.
func (r Rect) Raster(dc *gg.Context, f Frame) {
	x, y, w, h := r.bounds(f)
	if r.Fill.A > 0 {
		dc.SetColor(r.Fill.RGBA())
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}
	if r.Stroke.A > 0 {
		dc.SetColor(r.Stroke.RGBA())
		dc.SetLineWidth(1)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}
}

// WriteSVG implements Drawable.
func (r Rect) WriteSVG(buf *bytes.Buffer, f Frame) {
	x, y, w, h := r.bounds(f)
	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s"/>`+"\n",
		x, y, w, h, r.Fill.CSS(), r.Stroke.CSS())
}

// MarkerStyle selects the glyph drawn for a Marker.
type MarkerStyle string

const (
	MarkerCircle MarkerStyle = "circle"
	MarkerSquare MarkerStyle = "square"
	MarkerCross  MarkerStyle = "cross"
)

// Marker is a point glyph at a normalized position.
type Marker struct {
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Style MarkerStyle `json:"style,omitempty"`
	Size  float64     `json:"size,omitempty"`
	Color Color       `json:"color"`
}

func (m Marker) radius() float64 {
	if m.Size <= 0 {
		return 3
	}
	return m.Size
}

// Raster implements Drawable.
func (m Marker) Raster(dc *gg.Context, f Frame) {
	x, y, r := f.X(m.X), f.Y(m.Y), m.radius()
	dc.SetColor(m.Color.RGBA())
	switch m.Style {
	case MarkerSquare:
		dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
		dc.Fill()
	case MarkerCross:
		dc.SetLineWidth(1.5)
		dc.DrawLine(x-r, y, x+r, y)
		dc.DrawLine(x, y-r, x, y+r)
		dc.Stroke()
	default:
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}
}

// WriteSVG implements Drawable.
func (m Marker) WriteSVG(buf *bytes.Buffer, f Frame) {
	x, y, r := f.X(m.X), f.Y(m.Y), m.radius()
	switch m.Style {
	case MarkerSquare:
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			x-r, y-r, 2*r, 2*r, m.Color.CSS())
	case MarkerCross:
		fmt.Fprintf(buf, `  <path d="M %.2f %.2f H %.2f M %.2f %.2f V %.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
			x-r, y, x+r, x, y-r, y+r, m.Color.CSS())
	default:
		fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
			x, y, r, m.Color.CSS())
	}
}

// Label is a text annotation anchored at a normalized position.
type Label struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Size  float64 `json:"size,omitempty"`
	Color Color   `json:"color"`
}

func (l Label) fontSize() float64 {
	if l.Size <= 0 {
		return 14
	}
	return l.Size
}

// Raster implements Drawable.
func (l Label) Raster(dc *gg.Context, f Frame) {
	dc.SetColor(l.Color.RGBA())
	dc.SetFontFace(face(l.fontSize()))
	dc.DrawStringAnchored(l.Text, f.X(l.X), f.Y(l.Y), 0, 0.5)
}

// WriteSVG implements Drawable.
func (l Label) WriteSVG(buf *bytes.Buffer, f Frame) {
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-size="%.1f" font-family="sans-serif" fill="%s">%s</text>`+"\n",
		f.X(l.X), f.Y(l.Y), l.fontSize(), l.Color.CSS(), escapeXML(l.Text))
}

// escapeXML escapes the characters that break SVG text nodes.
func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

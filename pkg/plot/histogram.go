package plot

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

// Histogram is a named, fixed-binning histogram drawable.
//
// The histogram only counts: filling increments the matching bin and the
// entry total. There is no statistics layer on top (no mean, no fitting);
// the type exists so counts survive a container round trip and can be drawn.
type Histogram struct {
	Name    string    `json:"name"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Bins    []float64 `json:"bins"`
	Entries int       `json:"entries"`
	Fill    Color     `json:"fill"`
	Line    Color     `json:"line"`
}

// NewHistogram creates a histogram with nbins uniform bins over [min, max).
func NewHistogram(name string, nbins int, min, max float64) *Histogram {
	if nbins < 1 {
		nbins = 1
	}
	return &Histogram{
		Name: name,
		Min:  min,
		Max:  max,
		Bins: make([]float64, nbins),
		Fill: Blue,
		Line: Black,
	}
}

// Add fills the bin containing x with weight 1.
// Out-of-range values count as entries but land in no bin.
func (h *Histogram) Add(x float64) {
	h.Entries++
	if x < h.Min || x >= h.Max || h.Max <= h.Min {
		return
	}
	i := int((x - h.Min) / (h.Max - h.Min) * float64(len(h.Bins)))
	if i >= len(h.Bins) {
		i = len(h.Bins) - 1
	}
	h.Bins[i]++
}

// maxBin returns the largest bin content, at least 1 to keep scaling sane on
// empty histograms.
func (h *Histogram) maxBin() float64 {
	top := 1.0
	for _, b := range h.Bins {
		top = math.Max(top, b)
	}
	return top
}

// bars yields each bin as a normalized rectangle within the plot area.
// The plot area keeps a margin so axis labels have room.
func (h *Histogram) bars() []Rect {
	const (
		left   = 0.08
		right  = 0.96
		bottom = 0.08
		top    = 0.90
	)
	n := len(h.Bins)
	if n == 0 {
		return nil
	}

	scale := (top - bottom) / h.maxBin()
	width := (right - left) / float64(n)

	rects := make([]Rect, 0, n)
	for i, b := range h.Bins {
		if b <= 0 {
			continue
		}
		rects = append(rects, Rect{
			X1:     left + float64(i)*width,
			Y1:     bottom,
			X2:     left + float64(i+1)*width,
			Y2:     bottom + b*scale,
			Fill:   h.Fill,
			Stroke: h.Line,
		})
	}
	return rects
}

// Raster implements Drawable.
func (h *Histogram) Raster(dc *gg.Context, f Frame) {
	for _, r := range h.bars() {
		r.Raster(dc, f)
	}
	h.title().Raster(dc, f)
}

// WriteSVG implements Drawable.
func (h *Histogram) WriteSVG(buf *bytes.Buffer, f Frame) {
	for _, r := range h.bars() {
		r.WriteSVG(buf, f)
	}
	h.title().WriteSVG(buf, f)
}

func (h *Histogram) title() Label {
	return Label{
		X:     0.08,
		Y:     0.95,
		Text:  fmt.Sprintf("%s (%d entries)", h.Name, h.Entries),
		Size:  16,
		Color: Black,
	}
}

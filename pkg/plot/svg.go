package plot

import (
	"bytes"
	"fmt"
)

// encodeSVG emits the surface as a standalone SVG document. Children write
// their own fragments through the shared frame, so vector output stays in
// sync with the raster path.
func (s *Surface) encodeSVG() []byte {
	s.mu.Lock()
	children := make([]Drawable, len(s.children))
	copy(children, s.children)
	s.mu.Unlock()

	f := Frame{Width: float64(s.width), Height: float64(s.height)}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.width, s.height, s.width, s.height)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="%s"/>`+"\n", s.width, s.height, White.CSS())

	for _, d := range children {
		d.WriteSVG(&buf, f)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

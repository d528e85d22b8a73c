package cli

import (
	"fmt"
	"image"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plotkit/plotkit/pkg/plot"
)

// =============================================================================
// ViewerModel - Terminal surface viewer
// =============================================================================

// ViewerModel is the bubbletea model that presents a flushed surface in the
// terminal. Each character cell shows two image rows using the upper half
// block, so the preview keeps a roughly square aspect ratio.
type ViewerModel struct {
	Surface *plot.Surface
	Width   int
	Height  int
}

// NewViewerModel creates a viewer for the given surface.
func NewViewerModel(s *plot.Surface) ViewerModel {
	return ViewerModel{Surface: s, Width: 80, Height: 24}
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m ViewerModel) View() string {
	var b strings.Builder

	w, h := m.Surface.Size()
	b.WriteString(StyleTitle.Render(m.Surface.Name()))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %dx%d", w, h)))
	b.WriteString("\n\n")

	img := m.Surface.Image()
	if img == nil {
		b.WriteString(StyleDim.Render("  (surface not flushed)"))
	} else {
		b.WriteString(renderCells(img, m.cellColumns(), m.cellRows()))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q to close"))
	return b.String()
}

// cellColumns bounds the preview width to the viewport.
func (m ViewerModel) cellColumns() int {
	cols := m.Width - 2
	if cols < 16 {
		cols = 16
	}
	if cols > 120 {
		cols = 120
	}
	return cols
}

// cellRows bounds the preview height, leaving room for header and footer.
func (m ViewerModel) cellRows() int {
	rows := m.Height - 5
	if rows < 8 {
		rows = 8
	}
	if rows > 60 {
		rows = 60
	}
	return rows
}

// renderCells downsamples img into a cols x rows character grid. Each cell is
// an upper half block with the top sample as foreground and the bottom sample
// as background, giving two vertical pixels per terminal row.
func renderCells(img image.Image, cols, rows int) string {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return ""
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := sampleHex(img, col, 2*row, cols, 2*rows)
			bottom := sampleHex(img, col, 2*row+1, cols, 2*rows)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀")
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// sampleHex picks the image pixel for grid position (gx, gy) on a gw x gh
// grid and returns it as a hex color.
func sampleHex(img image.Image, gx, gy, gw, gh int) string {
	bounds := img.Bounds()
	x := bounds.Min.X + gx*bounds.Dx()/gw
	y := bounds.Min.Y + gy*bounds.Dy()/gh
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// runViewer presents the surface until the user dismisses it, then delivers
// the surface's close signal. It is the presenter handed to the render flow.
func runViewer(s *plot.Surface) {
	defer s.Close()

	p := tea.NewProgram(NewViewerModel(s), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		printError("viewer: %v", err)
	}
}

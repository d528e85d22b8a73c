package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/plotkit/plotkit/pkg/palette"
	"github.com/plotkit/plotkit/pkg/plot"
)

// newPaletteCmd creates the palette command group.
func newPaletteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Preview color palettes",
	}

	cmd.AddCommand(newPaletteLsCmd())
	cmd.AddCommand(newPaletteShowCmd())

	return cmd
}

// newPaletteLsCmd creates the "palette ls" subcommand.
func newPaletteLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List available palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range palette.Names() {
				colors, err := palette.Colors(name, 8)
				if err != nil {
					return err
				}
				fmt.Printf("  %s %s\n", StyleValue.Render(fmt.Sprintf("%-12s", name)), swatches(colors))
			}
			return nil
		},
	}
}

// newPaletteShowCmd creates the "palette show" subcommand. With --output the
// ramp is rendered as an image; otherwise it is printed as terminal swatches.
func newPaletteShowCmd() *cobra.Command {
	var (
		n      int
		output string
	)

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Expand a palette into a color ramp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			colors, err := palette.Colors(args[0], n)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(StyleTitle.Render(args[0]))
				fmt.Println("  " + swatches(colors))
				for i, c := range colors {
					rgba := c.RGBA()
					printDetail("%2d  #%02x%02x%02x", i, rgba.R, rgba.G, rgba.B)
				}
				return nil
			}

			surface, err := plot.Show(cmd.Context(), func(s *plot.Surface) error {
				width := 1.0 / float64(len(colors))
				for i, c := range colors {
					s.Add(plot.Rect{
						X1:   float64(i) * width,
						Y1:   0,
						X2:   float64(i+1) * width,
						Y2:   1,
						Fill: c,
					})
				}
				return nil
			},
				plot.WithSurface(plot.WithName(args[0]), plot.WithSize(64*len(colors), 96)),
				plot.WithOutput(output),
				plot.WithBlock(false),
			)
			if err != nil {
				return err
			}

			printSuccess("Rendered palette %s (%d colors)", surface.Name(), len(colors))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "colors", "n", 16, "number of colors to expand")
	cmd.Flags().StringVarP(&output, "output", "o", "", "render the ramp to an image file")

	return cmd
}

// swatches renders colors as a row of terminal blocks.
func swatches(colors []plot.Color) string {
	out := ""
	for _, c := range colors {
		rgba := c.RGBA()
		hex := fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
		out += lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
	}
	return out
}

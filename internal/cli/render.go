package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotkit/plotkit/pkg/container"
	"github.com/plotkit/plotkit/pkg/plot"
	"github.com/plotkit/plotkit/pkg/session"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string // output file path; derived from the scene name when empty
	store  string // optional container file to persist the scene's drawables
	view   bool   // open the terminal viewer and block until it closes
}

// newRenderCmd creates the render command for rasterizing scene files.
//
// The output format follows the output extension (.png, .jpg, .svg). The
// artifact is always written before the viewer starts, so interrupting the
// viewer never loses the render.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene.toml]",
		Short: "Render a scene file to PNG, JPEG, or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: scene name with .png)")
	cmd.Flags().StringVar(&opts.store, "store", "", "also persist the scene's drawables into a container file")
	cmd.Flags().BoolVar(&opts.view, "view", false, "open the terminal viewer after rendering")

	return cmd
}

func runRender(cmd *cobra.Command, scenePath string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	sc, err := loadScene(scenePath)
	if err != nil {
		return err
	}

	drawables, err := sc.drawables()
	if err != nil {
		return err
	}
	logger.Debug("scene loaded", "path", scenePath, "drawables", len(drawables))

	output := opts.output
	if output == "" {
		output = defaultOutput(scenePath)
	}

	showOpts := []plot.ShowOption{
		plot.WithSurface(sc.surfaceOptions()...),
		plot.WithOutput(output),
		plot.WithBlock(opts.view),
	}
	if opts.view {
		showOpts = append(showOpts, plot.WithDisplay(runViewer))
	}

	rd := session.NewRender()
	defer rd.Release()
	surface, err := plot.Show(ctx, func(s *plot.Surface) error {
		rd.Retain(drawables...)
		rd.AddTo(s)
		return nil
	}, showOpts...)
	if err != nil {
		return err
	}

	if opts.store != "" {
		if err := storeScene(ctx, opts.store, sc); err != nil {
			return err
		}
		printInfo("Stored %d drawables in %s", len(drawables), opts.store)
	}

	prog.done("Rendered " + surface.Name())
	printSuccess("Rendered %s (%d drawables)", surface.Name(), surface.Children())
	printFile(output)
	return nil
}

// storeScene writes every named scene object into a container, recreating it.
// Only histograms carry names; anonymous primitives are stored under a
// positional name so the whole scene round-trips.
func storeScene(ctx context.Context, path string, sc *scene) error {
	return container.With(ctx, path, container.ModeRecreate, func(ctx context.Context, c *container.Container) error {
		for _, h := range sc.Histograms {
			hist := plot.NewHistogram(h.Name, h.Bins, h.Min, h.Max)
			for _, v := range h.Values {
				hist.Add(v)
			}
			if err := c.Put(ctx, h.Name, hist); err != nil {
				return err
			}
		}
		return nil
	})
}

// defaultOutput derives the artifact path from the scene file name.
func defaultOutput(scenePath string) string {
	base := filepath.Base(scenePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/plotkit/plotkit/pkg/buildinfo"
)

// Execute runs the plotkit CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (render, store,
// palette, completion), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "plotkit",
		Short:        "PlotKit renders plotting sessions and manages their containers",
		Long:         `PlotKit is a CLI tool for rendering TOML scene files to image artifacts, inspecting the container files a plotting session persists objects into, and previewing color palettes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newStoreCmd())
	root.AddCommand(newPaletteCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

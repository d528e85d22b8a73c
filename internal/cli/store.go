package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plotkit/plotkit/pkg/container"
)

// newStoreCmd creates the store command group for inspecting container files.
func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and manage container files",
	}

	cmd.AddCommand(newStoreLsCmd())
	cmd.AddCommand(newStoreInfoCmd())
	cmd.AddCommand(newStoreRmCmd())
	cmd.AddCommand(newStoreExportCmd())

	return cmd
}

// newStoreLsCmd creates the "store ls" subcommand.
func newStoreLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [file]",
		Short: "List objects stored in a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return container.With(ctx, args[0], container.ModeRead, func(ctx context.Context, c *container.Container) error {
				infos, err := c.List(ctx)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					printInfo("Container is empty")
					return nil
				}

				fmt.Println(StyleTitle.Render(args[0]))
				for _, info := range infos {
					fmt.Printf("  %s  %s  %s\n",
						StyleValue.Render(fmt.Sprintf("%-24s", info.Name)),
						StyleDim.Render(fmt.Sprintf("%-20s", info.Kind)),
						StyleDim.Render(fmt.Sprintf("%6d bytes", info.Size)))
				}
				printDetail("%d objects", len(infos))
				return nil
			})
		},
	}
}

// newStoreInfoCmd creates the "store info" subcommand.
func newStoreInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file] [name]",
		Short: "Show metadata for a stored object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return container.With(ctx, args[0], container.ModeRead, func(ctx context.Context, c *container.Container) error {
				h, err := c.Get(ctx, args[1])
				if err != nil {
					return err
				}
				data, err := h.Bytes()
				if err != nil {
					return err
				}

				printKeyValue("Name", h.Name())
				printKeyValue("Kind", h.Kind())
				printKeyValue("Size", fmt.Sprintf("%d bytes", len(data)))
				printKeyValue("File", c.Path())
				return nil
			})
		},
	}
}

// newStoreRmCmd creates the "store rm" subcommand.
func newStoreRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [file] [name]",
		Short: "Remove an object from a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := container.With(ctx, args[0], container.ModeUpdate, func(ctx context.Context, c *container.Container) error {
				return c.Delete(ctx, args[1])
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %q from %s", args[1], args[0])
			return nil
		},
	}
}

// newStoreExportCmd creates the "store export" subcommand, which dumps an
// object's JSON payload. The handle is detached before the container closes
// so the payload stays valid while it is written out.
func newStoreExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [file] [name]",
		Short: "Export a stored object's JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var data []byte
			err := container.With(ctx, args[0], container.ModeRead, func(ctx context.Context, c *container.Container) error {
				h, err := c.Get(ctx, args[1])
				if err != nil {
					return err
				}
				if err := h.Detach(); err != nil {
					return err
				}
				data, err = h.Bytes()
				return err
			})
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Exported %q", args[1])
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write payload to file instead of stdout")

	return cmd
}

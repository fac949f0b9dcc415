package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/fsutil"
)

// NewMoveCmd creates the "move" command that relocates an extracted
// download into place, copying when a rename is not possible.
func NewMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <source> <destination>",
		Short: "Move a directory or file, falling back to copy and delete",
		Example: `  # Rename an extracted archive directory to its slug
  gitupdater move /tmp/upgrade/my-plugin-develop wp-content/plugins/my-plugin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fsutil.Move(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			cmd.Printf("Moved %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

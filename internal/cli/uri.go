package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/repo"
)

var errNoSlugMatch = errors.New("no configured repository matches")

func newURICmd() *cobra.Command {
	cmd := &cobra.Command{Use: "uri", Short: "Repository URI commands"}
	cmd.AddCommand(NewURIParseCmd())
	return cmd
}

// NewURIParseCmd creates the "uri parse" command that splits a repository URI
// into host, owner and repo.
func NewURIParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <uri>",
		Short: "Split a repository URI into its parts",
		Example: `  gitupdater uri parse https://github.com/owner/repo.git
  gitupdater uri parse owner/repo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, repo.ParseURI(args[0]))
		},
	}
}

func newSlugCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "slug", Short: "Installed slug commands"}
	cmd.AddCommand(NewSlugResolveCmd())
	return cmd
}

// NewSlugResolveCmd creates the "slug resolve" command that maps an installed
// directory name, such as "my-plugin-develop", onto a configured slug.
func NewSlugResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <installed-dir>",
		Short: "Map an installed directory name to a configured repository slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installed := repo.SanitizeFileName(args[0])
			slug, ok := repo.ResolveSlug(installed, configFrom(cmd).Repos)
			if !ok {
				return fmt.Errorf("%w %q", errNoSlugMatch, installed)
			}
			cmd.Println(slug)
			return nil
		},
	}
}

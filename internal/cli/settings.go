package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/settings"
)

const maskedValue = "********"

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Site options commands"}
	cmd.AddCommand(NewSettingsShowCmd(), NewSettingsSetCmd(), NewSettingsUnsetCmd())
	return cmd
}

// NewSettingsShowCmd creates the "settings show" command. Access tokens, the
// values stored under a configured repository slug, are masked unless
// --reveal is given.
func NewSettingsShowCmd() *cobra.Command {
	var (
		output string
		reveal bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err = validateOutput(output); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			opts, err := a.settings.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			if !reveal {
				slugs := a.cfg.Slugs()
				for k, v := range opts {
					if v != "" && slices.Contains(slugs, k) {
						opts[k] = maskedValue
					}
				}
			}

			if output == outputJSON {
				return printJSON(cmd, opts)
			}
			if len(opts) == 0 {
				cmd.Println("No options stored.")
				return nil
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "Option\tValue")
			fmt.Fprintln(w, "------\t-----")
			for _, k := range sortedKeys(opts) {
				fmt.Fprintf(w, "%s\t%s\n", k, opts[k])
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print access tokens in clear text")
	return cmd
}

// NewSettingsSetCmd creates the "settings set" command. Keys and values are
// sanitized before they are saved.
func NewSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Store one or more options",
		Example: `  # Store an access token for a private repository
  gitupdater settings set my-plugin=ghp_xxx

  # Refresh inline instead of in the background
  gitupdater settings set bypass_background_processing=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			updates := make(settings.Options, len(args))
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid option %q: expected key=value", arg)
				}
				updates[k] = v
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			opts, err := a.settings.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			for k, v := range settings.Sanitize(updates) {
				opts[k] = v
			}
			if err = settings.Save(cmd.Context(), a.store, opts); err != nil {
				return err
			}
			cmd.Printf("Saved %d option(s)\n", len(updates))
			return nil
		},
	}
}

// NewSettingsUnsetCmd creates the "settings unset" command.
func NewSettingsUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>...",
		Short: "Remove one or more options",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			opts, err := a.settings.Load(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			for _, k := range args {
				delete(opts, k)
			}
			if err = settings.Save(cmd.Context(), a.store, opts); err != nil {
				return err
			}
			cmd.Printf("Removed %d option(s)\n", len(args))
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"
)

// NewServersCmd creates the "servers" command listing the git servers used
// by configured repositories.
func NewServersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List the git servers of configured repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			servers := a.policy.RunningGitServers(a.cfg.Repos)
			if len(servers) == 0 {
				cmd.Println("No git servers in use.")
				return nil
			}
			for _, s := range servers {
				cmd.Println(s)
			}
			return nil
		},
	}
}

// NewHooksCmd creates the "hooks" command listing the extension points a
// command invocation exposes.
func NewHooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "List the available extension points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			for _, name := range a.hooks.Names() {
				cmd.Println(name)
			}
			return nil
		},
	}
}

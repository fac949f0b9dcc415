package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/logging"
	"github.com/rshade/gitupdater/internal/repocache"
	"github.com/rshade/gitupdater/internal/updater"
)

// Repo cache fields that refine the configured repository state.
const (
	fieldRemoteVersion = "remote_version"
	fieldTags          = "tags"
	fieldBranches      = "branches"
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "update", Short: "Update decision commands"}
	cmd.AddCommand(NewUpdateCheckCmd())
	return cmd
}

// updateStatus is one line of "update check".
type updateStatus struct {
	Slug            string `json:"slug"`
	Type            string `json:"type"`
	LocalVersion    string `json:"local_version"`
	RemoteVersion   string `json:"remote_version"`
	NewestTag       string `json:"newest_tag,omitempty"`
	CanUpdate       bool   `json:"can_update"`
	Private         bool   `json:"private"`
	OverrideDotOrg  bool   `json:"override_dot_org"`
	UseReleaseAsset bool   `json:"use_release_asset"`
}

// NewUpdateCheckCmd creates the "update check" command that evaluates the
// update gates for configured repositories.
func NewUpdateCheckCmd() *cobra.Command {
	var (
		output       string
		ajax         bool
		branchSwitch string
		constraint   string
	)

	cmd := &cobra.Command{
		Use:   "check [slug...]",
		Short: "Report which configured repositories can update",
		Long: `Evaluates every configured repository, or only the named ones, against
the host and runtime versions in the config file.

Fresh repo cache fields override the configured state: "remote_version"
replaces the remote version, "tags" selects the newest tag and "branches"
replaces the branch list.

--constraint limits the accepted remote versions of repositories that do not
set version_constraint in the config file.`,
		Example: `  # Check everything
  gitupdater update check

  # Check one repository as if switching it to a tag
  gitupdater update check my-plugin --branch-switch 1.2.0 --output json

  # Only accept 1.x releases
  gitupdater update check --constraint ">=1.0.0,<2.0.0"`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err = validateOutput(output); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			repos, err := selectRepos(a.cfg, args)
			if err != nil {
				return err
			}
			if constraint != "" {
				if _, err = updater.ParseVersionConstraint(constraint); err != nil {
					return err
				}
				repos = withConstraint(repos, constraint)
			}

			statuses, err := checkUpdates(cmd.Context(), a, repos, updater.Request{Ajax: ajax}, branchSwitch)
			if err != nil {
				return err
			}

			if output == outputJSON {
				return printJSON(cmd, statuses)
			}
			return renderUpdateStatus(cmd, statuses)
		},
	}

	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	cmd.Flags().BoolVar(&ajax, "ajax", false, "evaluate as an asynchronous admin request")
	cmd.Flags().StringVar(&branchSwitch, "branch-switch", "", "branch or tag being switched to")
	cmd.Flags().StringVar(&constraint, "constraint", "", "version constraint for repositories without their own")
	return cmd
}

func selectRepos(cfg *config.Config, slugs []string) ([]config.Repo, error) {
	if len(slugs) == 0 {
		return cfg.Repos, nil
	}
	repos := make([]config.Repo, 0, len(slugs))
	for _, slug := range slugs {
		r, ok := cfg.FindRepo(slug)
		if !ok {
			return nil, fmt.Errorf("repository %q is not configured", slug)
		}
		repos = append(repos, r)
	}
	return repos, nil
}

// withConstraint returns a copy of repos where every repository without a
// version constraint gets constraint.
func withConstraint(repos []config.Repo, constraint string) []config.Repo {
	out := make([]config.Repo, len(repos))
	for i, r := range repos {
		if r.VersionConstraint == "" {
			r.VersionConstraint = constraint
		}
		out[i] = r
	}
	return out
}

func checkUpdates(
	ctx context.Context,
	a *app,
	repos []config.Repo,
	req updater.Request,
	branchSwitch string,
) ([]updateStatus, error) {
	options, err := a.settings.Load(ctx, a.store)
	if err != nil {
		return nil, err
	}

	env := updater.EnvironmentFrom(a.cfg)
	statuses := make([]updateStatus, 0, len(repos))
	for _, r := range repos {
		r = applyCachedState(ctx, a.cache, r)
		statuses = append(statuses, updateStatus{
			Slug:            r.Slug,
			Type:            r.Type,
			LocalVersion:    r.LocalVersion,
			RemoteVersion:   r.RemoteVersion,
			NewestTag:       r.NewestTag,
			CanUpdate:       a.policy.CanUpdate(ctx, r, env),
			Private:         updater.IsPrivate(r, options, req),
			OverrideDotOrg:  a.policy.OverrideDotOrg(r.Type, r, false),
			UseReleaseAsset: updater.UseReleaseAsset(r, branchSwitch),
		})
	}
	return statuses, nil
}

// applyCachedState overlays the fresh cache fields of r's row onto r.
func applyCachedState(ctx context.Context, cache *repocache.Cache, r config.Repo) config.Repo {
	rec, ok := cache.Get(ctx, r.Slug)
	if !ok {
		return r
	}
	log := logging.FromContext(ctx).With().
		Str("component", "cli").
		Str("operation", "update_check").
		Str("slug", r.Slug).
		Logger()

	var remote string
	if err := rec.Decode(fieldRemoteVersion, &remote); err == nil && remote != "" {
		r.RemoteVersion = remote
	}

	var tags []string
	if err := rec.Decode(fieldTags, &tags); err == nil {
		newest, warnings, found := updater.NewestTag(tags)
		for _, w := range warnings {
			log.Debug().Ctx(ctx).Msg(w)
		}
		if found {
			r.NewestTag = newest
		}
	}

	var branches []string
	if err := rec.Decode(fieldBranches, &branches); err == nil && len(branches) > 0 {
		r.Branches = branches
	}
	return r
}

func renderUpdateStatus(cmd *cobra.Command, statuses []updateStatus) error {
	if len(statuses) == 0 {
		cmd.Println("No repositories configured.")
		return nil
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "Repository\tType\tLocal\tRemote\tUpdate\tPrivate\tSource")
	fmt.Fprintln(w, "----------\t----\t-----\t------\t------\t-------\t------")
	for _, st := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			st.Slug, st.Type, orDash(st.LocalVersion), orDash(st.RemoteVersion),
			yesNo(st.CanUpdate), yesNo(st.Private), updateSource(st))
	}
	return w.Flush()
}

func updateSource(st updateStatus) string {
	switch {
	case !st.OverrideDotOrg:
		return "directory"
	case st.UseReleaseAsset:
		return "release asset"
	default:
		return "git"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

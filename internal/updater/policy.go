// Package updater decides whether an installed repository can be updated
// and from which source: version gating against the host and runtime,
// private repository detection, public directory overrides and release
// asset selection.
package updater

import (
	"context"
	"fmt"
	"slices"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/hooks"
	"github.com/rshade/gitupdater/internal/logging"
)

// Extension point names.
const (
	RemoteIsNewerHook     = "remote_is_newer"
	OverrideDotOrgHook    = "override_dot_org"
	RunningGitServersHook = "running_git_servers"
)

// Environment is the host an update would be installed into.
type Environment struct {
	HostVersion    string
	RuntimeVersion string
}

// EnvironmentFrom reads the host section of cfg.
func EnvironmentFrom(cfg *config.Config) Environment {
	return Environment{HostVersion: cfg.Host.Version, RuntimeVersion: cfg.Host.RuntimeVersion}
}

// Request describes the caller of a check.
type Request struct {
	// Ajax is set for asynchronous admin requests.
	Ajax bool
}

// Policy holds the extension points consulted by update decisions.
type Policy struct {
	// RemoteIsNewer may replace the version comparison result.
	RemoteIsNewer *hooks.Chain[bool, config.Repo]
	// OverrideDotOrg returns plugin files or theme slugs that always update
	// from git even when the public directory has them.
	OverrideDotOrg *hooks.Chain[[]string, string]
	// RunningGitServers may adjust the git server list.
	RunningGitServers *hooks.Chain[[]string, []config.Repo]

	// SkipUpdates lists plugin files excluded from public directory updates.
	SkipUpdates []string
}

// NewPolicy returns a policy with empty extension points.
func NewPolicy(skipUpdates []string) *Policy {
	return &Policy{
		RemoteIsNewer:     hooks.NewChain[bool, config.Repo](RemoteIsNewerHook),
		OverrideDotOrg:    hooks.NewChain[[]string, string](OverrideDotOrgHook),
		RunningGitServers: hooks.NewChain[[]string, []config.Repo](RunningGitServersHook),
		SkipUpdates:       skipUpdates,
	}
}

// CanUpdate reports whether the remote version of r is newer than the
// installed one, both the host and runtime meet its minimums, and the remote
// version satisfies r.VersionConstraint. Empty minimums and constraints
// always pass; an empty remote version never updates.
func (p *Policy) CanUpdate(ctx context.Context, r config.Repo, env Environment) bool {
	hostOK := r.Requires == "" || compareLoose(env.HostVersion, r.Requires) >= 0
	runtimeOK := r.RequiresPHP == "" || compareLoose(env.RuntimeVersion, r.RequiresPHP) >= 0
	remoteIsNewer := r.RemoteVersion != "" && compareLoose(r.RemoteVersion, r.LocalVersion) > 0
	allowed := constraintAllows(r)

	if p != nil {
		remoteIsNewer = p.RemoteIsNewer.Apply(remoteIsNewer, r)
	}

	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("component", "updater").
		Str("operation", "can_update").
		Str("slug", r.Slug).
		Str("local_version", r.LocalVersion).
		Str("remote_version", r.RemoteVersion).
		Bool("remote_is_newer", remoteIsNewer).
		Bool("host_ok", hostOK).
		Bool("runtime_ok", runtimeOK).
		Bool("constraint_ok", allowed).
		Msg("update gate evaluated")

	return remoteIsNewer && hostOK && runtimeOK && allowed
}

// constraintAllows reports whether the remote version of r satisfies its
// version constraint. A constraint that does not parse, or a remote version
// that is not semantic, blocks the update.
func constraintAllows(r config.Repo) bool {
	if r.VersionConstraint == "" {
		return true
	}
	c, err := ParseVersionConstraint(r.VersionConstraint)
	if err != nil || !IsValidVersion(r.RemoteVersion) {
		return false
	}
	ok, err := SatisfiesConstraint(r.RemoteVersion, c)
	return err == nil && ok
}

// CheckConstraints returns an error wrapping config.ErrInvalidConfig for the
// first repository whose version constraint does not parse.
func CheckConstraints(repos []config.Repo) error {
	for _, r := range repos {
		if r.VersionConstraint == "" {
			continue
		}
		if _, err := ParseVersionConstraint(r.VersionConstraint); err != nil {
			return fmt.Errorf("%w: repo %s: %w", config.ErrInvalidConfig, r.Slug, err)
		}
	}
	return nil
}

// IsPrivate reports whether r needs or has credentials: it has never been
// queried, the remote answered with the placeholder version, or an access
// token is stored under its slug. Ajax requests never count as private.
func IsPrivate(r config.Repo, options map[string]string, req Request) bool {
	if req.Ajax {
		return false
	}
	if r.RemoteVersion == "" {
		return true
	}
	return r.RemoteVersion == NoVersion || options[r.Slug] != ""
}

// OverrideDotOrg reports whether r should update from git rather than the
// public directory. Repos not flagged as public, or tracking a branch other
// than their primary one, always do. settingsRow marks the settings listing,
// which treats every repo as overridable.
func (p *Policy) OverrideDotOrg(kind string, r config.Repo, settingsRow bool) bool {
	dotOrgPrimary := settingsRow || (r.DotOrg && r.PrimaryBranch == r.Branch)

	var key string
	switch kind {
	case config.TypePlugin:
		key = r.File
	case config.TypeTheme:
		key = r.Slug
	}

	var override bool
	if p != nil {
		override = slices.Contains(p.OverrideDotOrg.Apply(nil, kind), key)
		if !override {
			override = slices.Contains(p.SkipUpdates, r.File)
		}
	}

	return !dotOrgPrimary || override
}

// UseReleaseAsset reports whether r should install from its release asset.
// branchSwitch is the branch or tag being switched to, empty when staying
// on the current branch. Release assets apply to tags and the primary branch.
func UseReleaseAsset(r config.Repo, branchSwitch string) bool {
	isTag := branchSwitch != "" && !r.HasBranch(branchSwitch)
	switchPrimaryOrTag := (branchSwitch != "" && r.PrimaryBranch == branchSwitch) || isTag
	currentPrimary := branchSwitch == "" && r.PrimaryBranch == r.Branch

	return r.ReleaseAsset && r.NewestTag != NoVersion && (switchPrimaryOrTag || currentPrimary)
}

// RunningGitServers lists the distinct git servers of repos in first-seen order.
func (p *Policy) RunningGitServers(repos []config.Repo) []string {
	gits := make([]string, 0, len(repos))
	for _, r := range repos {
		gits = append(gits, r.Git)
	}
	if p != nil {
		gits = p.RunningGitServers.Apply(gits, repos)
	}

	seen := make(map[string]bool, len(gits))
	out := make([]string, 0, len(gits))
	for _, g := range gits {
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

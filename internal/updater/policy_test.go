package updater

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/hooks"
)

func TestCanUpdate(t *testing.T) {
	env := Environment{HostVersion: "6.4.2", RuntimeVersion: "8.1.0"}
	base := config.Repo{Slug: "p", LocalVersion: "1.0.0", RemoteVersion: "1.1.0"}

	tests := []struct {
		name   string
		mutate func(*config.Repo)
		want   bool
	}{
		{"newer remote", func(*config.Repo) {}, true},
		{"same version", func(r *config.Repo) { r.RemoteVersion = "1.0.0" }, false},
		{"older remote", func(r *config.Repo) { r.RemoteVersion = "0.9" }, false},
		{"no remote", func(r *config.Repo) { r.RemoteVersion = "" }, false},
		{"host too old", func(r *config.Repo) { r.Requires = "6.5" }, false},
		{"host ok", func(r *config.Repo) { r.Requires = "6.4" }, true},
		{"runtime too old", func(r *config.Repo) { r.RequiresPHP = "8.2" }, false},
		{"runtime ok", func(r *config.Repo) { r.RequiresPHP = "7.4" }, true},
		{"within constraint", func(r *config.Repo) { r.VersionConstraint = "^1.0.0" }, true},
		{"outside constraint", func(r *config.Repo) { r.VersionConstraint = "<1.1.0" }, false},
		{"bad constraint", func(r *config.Repo) { r.VersionConstraint = "latest" }, false},
		{"non-semver remote with constraint", func(r *config.Repo) {
			r.RemoteVersion = "nightly"
			r.VersionConstraint = ">=1.0.0"
		}, false},
	}
	p := NewPolicy(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			assert.Equal(t, tt.want, p.CanUpdate(context.Background(), r, env))
		})
	}
}

func TestCanUpdateRemoteIsNewerHook(t *testing.T) {
	p := NewPolicy(nil)
	p.RemoteIsNewer.Add("commit-sha", hooks.DefaultPriority, func(_ bool, r config.Repo) bool {
		return r.Branch == "develop"
	})

	r := config.Repo{LocalVersion: "1.0.0", RemoteVersion: "1.0.0", Branch: "develop"}
	assert.True(t, p.CanUpdate(context.Background(), r, Environment{}))

	r.Requires = "99"
	assert.False(t, p.CanUpdate(context.Background(), r, Environment{HostVersion: "6.0"}),
		"host gate still applies")
}

func TestCheckConstraints(t *testing.T) {
	repos := []config.Repo{
		{Slug: "free"},
		{Slug: "pinned", VersionConstraint: ">=2.0.0,<3.0.0"},
	}
	require.NoError(t, CheckConstraints(repos))

	repos = append(repos, config.Repo{Slug: "broken", VersionConstraint: "two-ish"})
	err := CheckConstraints(repos)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "broken")
}

func TestEnvironmentFrom(t *testing.T) {
	cfg := config.New()
	cfg.Host = config.HostConfig{Version: "6.4", RuntimeVersion: "8.2"}
	assert.Equal(t, Environment{HostVersion: "6.4", RuntimeVersion: "8.2"}, EnvironmentFrom(cfg))
}

func TestIsPrivate(t *testing.T) {
	options := map[string]string{"secret": "token"}
	tests := []struct {
		name string
		repo config.Repo
		req  Request
		want bool
	}{
		{"never queried", config.Repo{Slug: "a"}, Request{}, true},
		{"placeholder version", config.Repo{Slug: "a", RemoteVersion: NoVersion}, Request{}, true},
		{"has token", config.Repo{Slug: "secret", RemoteVersion: "1.0"}, Request{}, true},
		{"public", config.Repo{Slug: "a", RemoteVersion: "1.0"}, Request{}, false},
		{"ajax", config.Repo{Slug: "a"}, Request{Ajax: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrivate(tt.repo, options, tt.req))
		})
	}
}

func TestOverrideDotOrg(t *testing.T) {
	dotOrg := config.Repo{
		Slug: "p", File: "p/p.php", DotOrg: true, Branch: "master", PrimaryBranch: "master",
	}

	p := NewPolicy(nil)
	assert.False(t, p.OverrideDotOrg(config.TypePlugin, dotOrg, false), "public repo on primary branch")

	onBranch := dotOrg
	onBranch.Branch = "develop"
	assert.True(t, p.OverrideDotOrg(config.TypePlugin, onBranch, false))

	notDotOrg := dotOrg
	notDotOrg.DotOrg = false
	assert.True(t, p.OverrideDotOrg(config.TypePlugin, notDotOrg, false))
	assert.False(t, p.OverrideDotOrg(config.TypePlugin, notDotOrg, true), "settings rows count as public")

	p.OverrideDotOrg.Add("list", hooks.DefaultPriority, func(keys []string, _ string) []string {
		return append(keys, "p/p.php", "t")
	})
	assert.True(t, p.OverrideDotOrg(config.TypePlugin, dotOrg, false))

	theme := config.Repo{Slug: "t", File: "t", DotOrg: true}
	assert.True(t, p.OverrideDotOrg(config.TypeTheme, theme, false))

	skip := NewPolicy([]string{"p/p.php"})
	assert.True(t, skip.OverrideDotOrg(config.TypePlugin, dotOrg, false))
}

func TestUseReleaseAsset(t *testing.T) {
	r := config.Repo{
		ReleaseAsset:  true,
		NewestTag:     "1.2.0",
		Branch:        "master",
		PrimaryBranch: "master",
		Branches:      []string{"master", "develop"},
	}

	assert.True(t, UseReleaseAsset(r, ""), "on primary branch")
	assert.True(t, UseReleaseAsset(r, "master"), "switching to primary")
	assert.True(t, UseReleaseAsset(r, "1.1.0"), "switching to a tag")
	assert.False(t, UseReleaseAsset(r, "develop"), "switching to a branch")

	onDevelop := r
	onDevelop.Branch = "develop"
	assert.False(t, UseReleaseAsset(onDevelop, ""))

	noTag := r
	noTag.NewestTag = NoVersion
	assert.False(t, UseReleaseAsset(noTag, ""))

	disabled := r
	disabled.ReleaseAsset = false
	assert.False(t, UseReleaseAsset(disabled, "1.1.0"))
}

func TestRunningGitServers(t *testing.T) {
	repos := []config.Repo{{Git: "github"}, {Git: "gitlab"}, {Git: "github"}, {Git: "bitbucket"}}

	p := NewPolicy(nil)
	assert.Equal(t, []string{"github", "gitlab", "bitbucket"}, p.RunningGitServers(repos))

	p.RunningGitServers.Add("gitea", hooks.DefaultPriority, func(gits []string, _ []config.Repo) []string {
		return append(gits, "gitea", "github")
	})
	assert.Equal(t, []string{"github", "gitlab", "bitbucket", "gitea"}, p.RunningGitServers(repos))
}

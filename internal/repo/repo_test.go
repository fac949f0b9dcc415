package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/hooks"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Identity
	}{
		{
			name: "https with .git",
			in:   "https://github.com/owner/repo-name.git",
			want: Identity{
				Original:  "https://github.com/owner/repo-name.git",
				Scheme:    "https",
				Host:      "github.com",
				Owner:     "owner",
				Repo:      "repo-name",
				OwnerRepo: "owner/repo-name",
				BaseURI:   "https://github.com",
				URI:       "https://github.com/owner/repo-name.git",
			},
		},
		{
			name: "trailing slash",
			in:   "https://git.example.com/team/tool/",
			want: Identity{
				Original:  "https://git.example.com/team/tool/",
				Scheme:    "https",
				Host:      "git.example.com",
				Owner:     "team",
				Repo:      "tool",
				OwnerRepo: "team/tool",
				BaseURI:   "https://git.example.com",
				URI:       "https://git.example.com/team/tool",
			},
		},
		{
			name: "nested group",
			in:   "https://gitlab.com/group/sub/project",
			want: Identity{
				Original:  "https://gitlab.com/group/sub/project",
				Scheme:    "https",
				Host:      "gitlab.com",
				Owner:     "group/sub",
				Repo:      "project",
				OwnerRepo: "group/sub/project",
				BaseURI:   "https://gitlab.com",
				URI:       "https://gitlab.com/group/sub/project",
			},
		},
		{
			name: "no scheme",
			in:   "owner/repo",
			want: Identity{
				Original:  "owner/repo",
				Owner:     "owner",
				Repo:      "repo",
				OwnerRepo: "owner/repo",
			},
		},
		{
			name: "single segment",
			in:   "repo",
			want: Identity{Original: "repo", Repo: "repo", OwnerRepo: "/repo"},
		},
		{
			name: "query kept in base",
			in:   "https://github.com/owner/repo?ref=dev",
			want: Identity{
				Original:  "https://github.com/owner/repo?ref=dev",
				Scheme:    "https",
				Host:      "github.com",
				Owner:     "owner",
				Repo:      "repo",
				OwnerRepo: "owner/repo",
				BaseURI:   "https://github.com?ref=dev",
				URI:       "https://github.com/owner/repo?ref=dev",
			},
		},
		{
			name: "host only",
			in:   "https://github.com",
			want: Identity{
				Original:  "https://github.com",
				Scheme:    "https",
				Host:      "github.com",
				OwnerRepo: "/",
				BaseURI:   "https://github.com",
				URI:       "https://github.com",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseURI(tt.in))
		})
	}
}

func TestIdentityIsHost(t *testing.T) {
	assert.True(t, ParseURI("https://github.com/a/b").IsHost("github.com"))
	assert.False(t, ParseURI("https://git.example.com/a/b").IsHost("github.com"))
	assert.False(t, ParseURI("a/b").IsHost("github.com"))
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"multi\nline\ttext", "multi line text"},
		{"<script>x</script>y", "xy"},
		{"a%20b", "ab"},
		{"bad\xffutf8", "badutf8"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), tt.in)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-plugin", "my-plugin"},
		{"Café Plugin", "Cafe-Plugin"},
		{"a/b\\c?d", "abcd"},
		{"..hidden_", "hidden"},
		{"spaces   and - dashes", "spaces-and-dashes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), tt.in)
	}
}

func TestFallbackSlug(t *testing.T) {
	assert.Equal(t, "my-plugin", FallbackSlug("my-plugin-main"))
	assert.Equal(t, "my", FallbackSlug("my-plugin"))
	assert.Empty(t, FallbackSlug("plugin"))
}

func TestResolveSlug(t *testing.T) {
	repos := []config.Repo{
		{Slug: "my", File: "my/my.php"},
		{Slug: "my-plugin", File: "my-plugin/my-plugin.php"},
		{Slug: "other", File: "renamed-dir/other.php"},
	}

	tests := []struct {
		name      string
		installed string
		repos     []config.Repo
		want      string
		wantOK    bool
	}{
		{"branch suffix", "my-plugin-main", repos, "my-plugin", true},
		{"exact beats fallback", "my-plugin", repos, "my-plugin", true},
		{"directory name", "renamed-dir", repos, "other", true},
		{"directory fallback", "renamed-dir-master", repos, "other", true},
		{"no match", "unknown-thing", repos, "", false},
		{"no dash", "plugin", repos, "", false},
		{"empty config", "my-plugin", nil, "", false},
		{
			name:      "exact later in list",
			installed: "tool-dev",
			repos: []config.Repo{
				{Slug: "tool", File: "tool/tool.php"},
				{Slug: "tool-dev", File: "tool-dev/tool.php"},
			},
			want:   "tool-dev",
			wantOK: true,
		},
		{
			name:      "last fallback wins",
			installed: "lib-main",
			repos: []config.Repo{
				{Slug: "lib", File: "x/lib.php"},
				{Slug: "lib-fork", File: "lib/lib.php"},
			},
			want:   "lib-fork",
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveSlug(tt.installed, tt.repos)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParts(t *testing.T) {
	b := NewPartsBuilder()

	p := b.Parts("GitHub", "github_plugin")
	require.True(t, p.OK)
	assert.Equal(t, "github_plugin", p.Type)
	assert.Equal(t, "github", p.GitServer)
	assert.Equal(t, "https://github.com/", p.BaseURI)
	assert.Equal(t, map[string]string{
		"Languages": "GitHub Languages",
		"CIJob":     "GitHub CI Job",
	}, p.Headers)

	assert.Equal(t, "github_theme", b.Parts("GitHub", "theme").Type)
	assert.False(t, b.Parts("GitLab", "plugin").OK)

	b.Filter.Add("gitlab", hooks.DefaultPriority, func(tbl ProviderTable, kind string) ProviderTable {
		tbl.Types["GitLab"] = "gitlab_" + kind
		tbl.URIs["GitLab"] = "https://gitlab.com/"
		return tbl
	})
	p = b.Parts("GitLab", "gitlab_theme")
	require.True(t, p.OK)
	assert.Equal(t, "gitlab_theme", p.Type)
	assert.Equal(t, "GitLab CI Job", p.Headers["CIJob"])
	assert.Len(t, b.Providers("plugin"), 2)

	var nilBuilder *PartsBuilder
	assert.True(t, nilBuilder.Parts("GitHub", "plugin").OK)
}

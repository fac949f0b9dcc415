package config

import (
	"path"
	"slices"
)

// Repository types.
const (
	TypePlugin = "plugin"
	TypeTheme  = "theme"
)

// Repo is one installed plugin or theme that updates from a git host.
type Repo struct {
	// Slug is the canonical repository slug.
	Slug string `yaml:"slug" json:"slug"`
	// File is the main file relative to the content directory, e.g. "my-plugin/my-plugin.php".
	// Themes use the theme directory name.
	File string `yaml:"file" json:"file"`
	// Type is "plugin" or "theme".
	Type string `yaml:"type" json:"type"`
	// Git is the git server name, e.g. "github".
	Git string `yaml:"git" json:"git"`
	// URI is the repository URL from the file header.
	URI string `yaml:"uri,omitempty" json:"uri,omitempty"`

	Branch        string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	PrimaryBranch string   `yaml:"primary_branch,omitempty" json:"primary_branch,omitempty"`
	Branches      []string `yaml:"branches,omitempty" json:"branches,omitempty"`

	LocalVersion  string `yaml:"local_version,omitempty" json:"local_version,omitempty"`
	RemoteVersion string `yaml:"remote_version,omitempty" json:"remote_version,omitempty"`
	NewestTag     string `yaml:"newest_tag,omitempty" json:"newest_tag,omitempty"`

	// Requires is the minimum host version ("Requires at least").
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty"`
	// RequiresPHP is the minimum runtime version ("Requires PHP").
	RequiresPHP string `yaml:"requires_php,omitempty" json:"requires_php,omitempty"`

	// VersionConstraint limits the remote versions this install accepts,
	// e.g. ">=1.0.0,<2.0.0".
	VersionConstraint string `yaml:"version_constraint,omitempty" json:"version_constraint,omitempty"`

	ReleaseAsset bool `yaml:"release_asset,omitempty" json:"release_asset,omitempty"`
	// DotOrg marks repos that also exist in the public plugin directory.
	DotOrg bool `yaml:"dot_org,omitempty" json:"dot_org,omitempty"`
}

// Dir returns the directory part of File, "." when File has none.
func (r Repo) Dir() string {
	return path.Dir(r.File)
}

// HasBranch reports whether name is a known branch of the repository.
func (r Repo) HasBranch(name string) bool {
	return slices.Contains(r.Branches, name)
}

// FindRepo returns the repo with the given slug.
func (c *Config) FindRepo(slug string) (Repo, bool) {
	for _, r := range c.Repos {
		if r.Slug == slug {
			return r, true
		}
	}
	return Repo{}, false
}

// Plugins returns the configured plugins.
func (c *Config) Plugins() []Repo {
	return c.reposOfType(TypePlugin)
}

// Themes returns the configured themes.
func (c *Config) Themes() []Repo {
	return c.reposOfType(TypeTheme)
}

// Slugs returns every configured slug in file order.
func (c *Config) Slugs() []string {
	out := make([]string, 0, len(c.Repos))
	for _, r := range c.Repos {
		out = append(out, r.Slug)
	}
	return out
}

func (c *Config) reposOfType(t string) []Repo {
	var out []Repo
	for _, r := range c.Repos {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

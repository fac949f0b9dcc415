// Package header reads metadata fields such as "Version" or
// "GitHub Plugin URI" from the comment block at the top of a plugin or theme
// main file.
package header

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Kind is the artifact type a header belongs to.
type Kind string

// Supported kinds.
const (
	KindPlugin Kind = "plugin"
	KindTheme  Kind = "theme"
)

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPlugin, KindTheme:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q: must be %q or %q", s, KindPlugin, KindTheme)
	}
}

// Field pairs a field name with the label matched in the file header.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Spec is an ordered header table. Earlier fields win label collisions.
type Spec []Field

// Map returns the table as a field name to label map.
func (s Spec) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, f := range s {
		m[f.Name] = f.Label
	}
	return m
}

// Parsed holds extracted header values keyed by field name.
type Parsed map[string]string

// Contents is the input to Extract: raw file Text or an already Parsed map.
type Contents interface {
	isContents()
}

// Text is raw file contents.
type Text string

func (Text) isContents()   {}
func (Parsed) isContents() {}

//nolint:gochecknoglobals // Fixed tables.
var (
	defaultPluginHeaders = Spec{
		{"Name", "Plugin Name"},
		{"PluginURI", "Plugin URI"},
		{"Version", "Version"},
		{"Description", "Description"},
		{"Author", "Author"},
		{"AuthorURI", "Author URI"},
		{"TextDomain", "Text Domain"},
		{"DomainPath", "Domain Path"},
		{"Network", "Network"},
		{"Requires", "Requires at least"},
		{"RequiresPHP", "Requires PHP"},
	}

	defaultThemeHeaders = Spec{
		{"Name", "Theme Name"},
		{"ThemeURI", "Theme URI"},
		{"Description", "Description"},
		{"Author", "Author"},
		{"AuthorURI", "Author URI"},
		{"Version", "Version"},
		{"Template", "Template"},
		{"Status", "Status"},
		{"Tags", "Tags"},
		{"TextDomain", "Text Domain"},
		{"DomainPath", "Domain Path"},
		{"Requires", "Requires at least"},
		{"RequiresPHP", "Requires PHP"},
	}
)

// Extra header field names.
const (
	GitHubPluginURI = "GitHubPluginURI"
	GitHubThemeURI  = "GitHubThemeURI"
	GitHubLanguages = "GitHubLanguages"
	GitHubCIJob     = "GitHubCIJob"
	ReleaseAsset    = "ReleaseAsset"
	PrimaryBranch   = "PrimaryBranch"
)

// DefaultExtraHeaders are the provider headers every parser understands.
func DefaultExtraHeaders() map[string]string {
	return map[string]string{
		GitHubPluginURI: "GitHub Plugin URI",
		GitHubThemeURI:  "GitHub Theme URI",
		GitHubLanguages: "GitHub Languages",
		GitHubCIJob:     "GitHub CI Job",
		ReleaseAsset:    "Release Asset",
		PrimaryBranch:   "Primary Branch",
	}
}

// DefaultHeaders returns the built-in table for kind, nil for unknown kinds.
func DefaultHeaders(kind Kind) Spec {
	switch kind {
	case KindPlugin:
		return slices.Clone(defaultPluginHeaders)
	case KindTheme:
		return slices.Clone(defaultThemeHeaders)
	default:
		return nil
	}
}

var commentTail = regexp.MustCompile(`\s*(?:\*/|\?>).*`)

// cleanupHeaderComment strips a closing comment or script tag and the
// surrounding whitespace from a captured value.
func cleanupHeaderComment(s string) string {
	return strings.TrimSpace(commentTail.ReplaceAllString(s, ""))
}

// labelPattern matches "<label>:" at the start of a line, after optional
// comment decoration, and captures the rest of the line.
func labelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^[ \t/*#@]*` + regexp.QuoteMeta(label) + `:(.*)$`)
}

// extraSpec orders extra headers by field name.
func extraSpec(extra map[string]string) Spec {
	spec := make(Spec, 0, len(extra))
	for _, name := range slices.Sorted(maps.Keys(extra)) {
		spec = append(spec, Field{Name: name, Label: extra[name]})
	}
	return spec
}

// dedupeLabels keeps the first field for each label.
func dedupeLabels(spec Spec) Spec {
	seen := make(map[string]bool, len(spec))
	out := spec[:0:0]
	for _, f := range spec {
		if seen[f.Label] {
			continue
		}
		seen[f.Label] = true
		out = append(out, f)
	}
	return out
}

// dropEmpty removes fields with no data. "0" counts as empty.
func dropEmpty(p Parsed) Parsed {
	out := make(Parsed, len(p))
	for k, v := range p {
		if v == "" || v == "0" {
			continue
		}
		out[k] = v
	}
	return out
}

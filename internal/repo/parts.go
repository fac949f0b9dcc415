package repo

import (
	"maps"
	"strings"

	"github.com/rshade/gitupdater/internal/hooks"
)

// PartsHook is the extension point other git hosts use to add themselves to
// the provider table.
const PartsHook = "repo_parts"

// ExtraRepoHeader is a provider-prefixed header part, e.g. "Languages".
type ExtraRepoHeader struct {
	Key   string
	Label string
}

// ExtraRepoHeaders are the per-provider header parts. The full label is
// "<Provider> <Label>" and the parsed field is "<Provider><Key>".
//
//nolint:gochecknoglobals // Fixed table.
var ExtraRepoHeaders = []ExtraRepoHeader{
	{Key: "Languages", Label: "Languages"},
	{Key: "CIJob", Label: "CI Job"},
}

// ProviderTable maps provider names such as "GitHub" to their repo type and base URI.
type ProviderTable struct {
	Types map[string]string
	URIs  map[string]string
}

// DefaultProviders returns the built-in provider table for kind.
func DefaultProviders(kind string) ProviderTable {
	return ProviderTable{
		Types: map[string]string{"GitHub": "github_" + kind},
		URIs:  map[string]string{"GitHub": "https://github.com/"},
	}
}

// Parts is the provider-specific description of a repo type.
type Parts struct {
	OK        bool   `json:"ok"`
	Type      string `json:"type,omitempty"`
	GitServer string `json:"git_server,omitempty"`
	BaseURI   string `json:"base_uri,omitempty"`
	// Headers maps each ExtraRepoHeader key to its provider-prefixed label.
	Headers map[string]string `json:"headers,omitempty"`
}

// PartsBuilder resolves Parts, letting callers extend the provider table.
type PartsBuilder struct {
	// Filter receives the default table and the unprefixed kind.
	Filter *hooks.Chain[ProviderTable, string]
}

// NewPartsBuilder returns a builder with an empty repo_parts chain.
func NewPartsBuilder() *PartsBuilder {
	return &PartsBuilder{Filter: hooks.NewChain[ProviderTable, string](PartsHook)}
}

// Parts describes provider for kind. kind may carry the lower-cased provider
// prefix ("github_plugin"), which is stripped. OK is false for providers
// missing from the table.
func (b *PartsBuilder) Parts(provider, kind string) Parts {
	kind = strings.ReplaceAll(kind, strings.ToLower(provider)+"_", "")

	table := DefaultProviders(kind)
	if b != nil {
		table = b.Filter.Apply(table, kind)
	}

	typ, ok := table.Types[provider]
	if !ok {
		return Parts{}
	}

	headers := make(map[string]string, len(ExtraRepoHeaders))
	for _, h := range ExtraRepoHeaders {
		headers[h.Key] = provider + " " + h.Label
	}

	return Parts{
		OK:        true,
		Type:      typ,
		GitServer: strings.ToLower(provider),
		BaseURI:   table.URIs[provider],
		Headers:   headers,
	}
}

// Providers lists the provider names known for kind after filtering.
func (b *PartsBuilder) Providers(kind string) map[string]string {
	table := DefaultProviders(kind)
	if b != nil {
		table = b.Filter.Apply(table, kind)
	}
	return maps.Clone(table.Types)
}

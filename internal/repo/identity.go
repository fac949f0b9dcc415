// Package repo derives canonical repository identities from header URIs and
// reconciles installed directory names with configured repository slugs.
package repo

import (
	"net/url"
	"path"
	"strings"
)

// Identity is the canonical description of a repository derived from its URI.
type Identity struct {
	Original  string `json:"original"`
	Scheme    string `json:"scheme,omitempty"`
	Host      string `json:"host,omitempty"`
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	OwnerRepo string `json:"owner_repo"`
	// BaseURI is the original URI with its path removed, e.g. "https://github.com".
	BaseURI string `json:"base_uri"`
	// URI is the trimmed original URI, empty when it has no scheme.
	URI string `json:"uri,omitempty"`
}

// ParseURI splits a repository URI such as "https://github.com/owner/repo.git"
// into its identity. Scheme-less values like "owner/repo" are treated as a bare
// path. Every field is passed through SanitizeText.
func ParseURI(raw string) Identity {
	id := Identity{Original: raw}

	rawPath := raw
	if u, err := url.Parse(raw); err == nil {
		id.Scheme = u.Scheme
		id.Host = u.Host
		rawPath = rawURLPath(raw, u)
	}

	trimmed := strings.TrimRight(rawPath, "/")
	if trimmed != "" {
		id.Owner = strings.Trim(path.Dir(trimmed), "/")
		if id.Owner == "." {
			id.Owner = ""
		}
		id.Repo = strings.TrimSuffix(path.Base(trimmed), ".git")
	}
	id.OwnerRepo = id.Owner + "/" + id.Repo

	id.BaseURI = raw
	if rawPath != "" {
		id.BaseURI = strings.Replace(raw, rawPath, "", 1)
	}
	if id.Scheme != "" {
		id.URI = strings.Trim(raw, "/")
	}

	return id.sanitized()
}

// rawURLPath returns the path of raw exactly as written, without decoding.
func rawURLPath(raw string, u *url.URL) string {
	if u.Opaque != "" {
		return ""
	}
	s := raw
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if u.Scheme != "" {
		s = s[len(u.Scheme)+1:]
	}
	if rest, ok := strings.CutPrefix(s, "//"); ok {
		i := strings.Index(rest, "/")
		if i < 0 {
			return ""
		}
		s = rest[i:]
	}
	return s
}

func (id Identity) sanitized() Identity {
	return Identity{
		Original:  SanitizeText(id.Original),
		Scheme:    SanitizeText(id.Scheme),
		Host:      SanitizeText(id.Host),
		Owner:     SanitizeText(id.Owner),
		Repo:      SanitizeText(id.Repo),
		OwnerRepo: SanitizeText(id.OwnerRepo),
		BaseURI:   SanitizeText(id.BaseURI),
		URI:       SanitizeText(id.URI),
	}
}

// IsHost reports whether the identity's host contains domain, e.g. "github.com".
func (id Identity) IsHost(domain string) bool {
	return id.Host != "" && strings.Contains(id.Host, domain)
}

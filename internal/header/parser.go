package header

import (
	"context"
	"maps"
	"regexp"
	"strings"
	"sync"

	"github.com/rshade/gitupdater/internal/hooks"
	"github.com/rshade/gitupdater/internal/logging"
	"github.com/rshade/gitupdater/internal/repo"
)

// EnterpriseHook is the extension point that adjusts the enterprise API
// endpoint of self-hosted providers.
const EnterpriseHook = "parse_enterprise_headers"

// DefaultPrimaryBranch is used when a header does not name a primary branch.
const DefaultPrimaryBranch = "master"

// Extra is the provider-specific data derived from the parsed headers.
type Extra struct {
	EnterpriseURI string `json:"enterprise_uri,omitempty"`
	EnterpriseAPI string `json:"enterprise_api,omitempty"`
	Languages     string `json:"languages,omitempty"`
	CIJob         string `json:"ci_job,omitempty"`
	ReleaseAsset  bool   `json:"release_asset"`
	PrimaryBranch string `json:"primary_branch"`
}

// Header is a repository identity augmented with its extra headers.
type Header struct {
	repo.Identity
	Extra
}

// Parser extracts header fields. The zero value understands only the
// built-in tables.
type Parser struct {
	extra Spec

	// Enterprise receives the header and the provider name when the
	// repository has a host.
	Enterprise *hooks.Chain[Header, string]

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewParser returns a parser that also matches extra, a field name to
// label map, on top of DefaultExtraHeaders.
func NewParser(extra map[string]string) *Parser {
	all := DefaultExtraHeaders()
	maps.Copy(all, extra)
	return &Parser{
		extra:      extraSpec(all),
		Enterprise: hooks.NewChain[Header, string](EnterpriseHook),
	}
}

// HeadersFor returns the default table for kind followed by the extra
// headers, with duplicate labels collapsed onto their first field.
func (p *Parser) HeadersFor(kind Kind) Spec {
	spec := DefaultHeaders(kind)
	if p != nil {
		spec = append(spec, p.extra...)
	}
	return dedupeLabels(spec)
}

// Extract reads the fields of kind from contents.
//
// Text is scanned line by line: lone CRs count as line breaks, each label is
// matched case-insensitively at the start of a line after optional comment
// decoration, and the captured value is cleaned of closing comment markers.
// A Parsed input is returned as given without consulting the table.
// In both cases fields without data are dropped.
func (p *Parser) Extract(ctx context.Context, contents Contents, kind Kind) Parsed {
	switch c := contents.(type) {
	case Parsed:
		return dropEmpty(c)
	case Text:
		data := strings.ReplaceAll(string(c), "\r", "\n")
		spec := p.HeadersFor(kind)
		out := make(Parsed, len(spec))
		for _, f := range spec {
			out[f.Name] = ""
			if m := p.pattern(f.Label).FindStringSubmatch(data); m != nil && m[1] != "" {
				out[f.Name] = cleanupHeaderComment(m[1])
			}
		}
		parsed := dropEmpty(out)

		logger := logging.FromContext(ctx)
		logger.Debug().
			Str("component", "header").
			Str("operation", "extract").
			Str("kind", string(kind)).
			Int("fields", len(parsed)).
			Msg("parsed file header")
		return parsed
	default:
		return Parsed{}
	}
}

func (p *Parser) pattern(label string) *regexp.Regexp {
	if p == nil {
		return labelPattern(label)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.patterns == nil {
		p.patterns = make(map[string]*regexp.Regexp)
	}
	re, ok := p.patterns[label]
	if !ok {
		re = labelPattern(label)
		p.patterns[label] = re
	}
	return re
}

// ExtractExtra derives the enterprise endpoints, provider-prefixed
// Languages and CIJob values, the release asset flag and the primary branch
// for a repository hosted on provider (e.g. "GitHub"). A release asset flag
// or primary branch set by the Enterprise chain is kept.
func (p *Parser) ExtractExtra(id repo.Identity, parsed Parsed, provider string) Header {
	h := Header{Identity: id}

	if id.Host != "" {
		if provider == "GitHub" && !id.IsHost("github.com") {
			h.EnterpriseURI = id.BaseURI
			h.EnterpriseAPI = strings.Trim(id.BaseURI, "/") + "/api/v3"
		}
		if p != nil {
			h = p.Enterprise.Apply(h, provider)
		}
	}

	for _, part := range repo.ExtraRepoHeaders {
		v := parsed[provider+part.Key]
		if v == "" {
			continue
		}
		switch part.Key {
		case "Languages":
			h.Languages = v
		case "CIJob":
			h.CIJob = v
		}
	}

	// Values set by the enterprise filter take precedence over the header.
	if !h.ReleaseAsset {
		h.ReleaseAsset = parsed[ReleaseAsset] == "true"
	}
	if h.PrimaryBranch == "" {
		h.PrimaryBranch = parsed[PrimaryBranch]
	}
	if h.PrimaryBranch == "" {
		h.PrimaryBranch = DefaultPrimaryBranch
	}
	return h
}

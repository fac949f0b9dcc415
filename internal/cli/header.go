package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/header"
	"github.com/rshade/gitupdater/internal/repo"
)

// headerCacheField is the repo cache field holding a parsed header.
const headerCacheField = "header"

func newHeaderCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "header", Short: "File header commands"}
	cmd.AddCommand(NewHeaderParseCmd(), NewHeaderFieldsCmd())
	return cmd
}

// headerResult is the output of "header parse".
type headerResult struct {
	Fields   header.Parsed  `json:"fields"`
	Provider string         `json:"provider,omitempty"`
	Parts    *repo.Parts    `json:"parts,omitempty"`
	Repo     *header.Header `json:"repo,omitempty"`
}

// NewHeaderParseCmd creates the "header parse" command that extracts the
// metadata header of a plugin or theme main file.
func NewHeaderParseCmd() *cobra.Command {
	var (
		kind     string
		repoSlug string
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Extract the header fields of a plugin or theme file",
		Long: `Reads the comment header of a plugin main file or a theme stylesheet and
prints the recognised fields. When the header names a git repository the
provider, owner/repo and enterprise endpoints are included.

With --repo the parsed fields are cached in that repository's row and reused
until the row expires.`,
		Example: `  # Parse a plugin header
  gitupdater header parse --kind plugin my-plugin/my-plugin.php

  # Parse a theme stylesheet and cache the result
  gitupdater header parse --kind theme --repo my-theme my-theme/style.css`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			k, err := header.ParseKind(kind)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			parsed, err := parseHeaderFile(cmd.Context(), a, args[0], k, repoSlug)
			if err != nil {
				return err
			}
			return printJSON(cmd, describeHeader(a, parsed, k))
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(header.KindPlugin), "header kind: plugin or theme")
	cmd.Flags().StringVar(&repoSlug, "repo", "", "cache the parsed fields in this repository's row")
	return cmd
}

// parseHeaderFile extracts the header of path, going through the repo cache
// when repoSlug is set.
func parseHeaderFile(
	ctx context.Context,
	a *app,
	path string,
	kind header.Kind,
	repoSlug string,
) (header.Parsed, error) {
	extract := func(ctx context.Context) (any, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return a.parser.Extract(ctx, header.Text(data), kind), nil
	}

	if repoSlug == "" {
		v, err := extract(ctx)
		if err != nil {
			return nil, err
		}
		parsed, _ := v.(header.Parsed)
		return parsed, nil
	}

	raw, err := a.cache.Remember(ctx, repoSlug, headerCacheField, extract)
	if err != nil {
		return nil, err
	}
	var parsed header.Parsed
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding cached header: %w", err)
	}
	// Cached rows hold fields as stored; pass them through the same filter.
	return a.parser.Extract(ctx, parsed, kind), nil
}

// describeHeader finds the first provider whose "<Provider><Kind>URI" field
// is set and derives the repository details from it.
func describeHeader(a *app, parsed header.Parsed, kind header.Kind) headerResult {
	res := headerResult{Fields: parsed}

	for _, provider := range sortedKeys(a.parts.Providers(string(kind))) {
		uri := parsed[provider+titleCase(string(kind))+"URI"]
		if uri == "" {
			continue
		}
		parts := a.parts.Parts(provider, string(kind))
		h := a.parser.ExtractExtra(repo.ParseURI(uri), parsed, provider)
		res.Provider = provider
		res.Parts = &parts
		res.Repo = &h
		break
	}
	return res
}

// NewHeaderFieldsCmd creates the "header fields" command that lists the
// labels matched for a kind, including configured extra headers.
func NewHeaderFieldsCmd() *cobra.Command {
	var kind, output string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the header labels recognised for a kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			k, err := header.ParseKind(kind)
			if err != nil {
				return err
			}

			spec := header.NewParser(configFrom(cmd).ExtraHeaders).HeadersFor(k)
			if output == outputJSON {
				return printJSON(cmd, spec.Map())
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "Field\tLabel")
			fmt.Fprintln(w, "-----\t-----")
			for _, f := range spec {
				fmt.Fprintf(w, "%s\t%s\n", f.Name, f.Label)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(header.KindPlugin), "header kind: plugin or theme")
	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	return cmd
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

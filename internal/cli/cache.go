package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/gitupdater/internal/repocache"
)

var errCacheMiss = errors.New("no fresh cache row")

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Repo cache commands"}
	cmd.AddCommand(
		NewCacheGetCmd(), NewCachePutCmd(), NewCacheDeleteCmd(),
		NewCachePurgeCmd(), NewCacheStatusCmd(),
	)
	return cmd
}

// NewCacheGetCmd creates the "cache get" command that prints the fresh row of
// a repository, or a single field of it.
func NewCacheGetCmd() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "get [repo]",
		Short: "Print the fresh cache row of a repository",
		Long: `Prints the cache row of a repository if it has not expired.
Without a repository the shared "ghu" row is read.`,
		Example: `  # Print the whole row
  gitupdater cache get my-plugin

  # Print one field
  gitupdater cache get my-plugin --field tags`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			repoName := firstArg(args)
			rec, ok := a.cache.Get(cmd.Context(), repoName)
			if !ok {
				return fmt.Errorf("%w for %q", errCacheMiss, displayRepo(repoName))
			}

			if field == "" {
				return printJSON(cmd, rec)
			}
			raw, found := rec.Field(field)
			if !found {
				return fmt.Errorf("%w: %s", repocache.ErrFieldNotFound, field)
			}
			cmd.Println(string(raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "print only this field")
	return cmd
}

// NewCachePutCmd creates the "cache put" command. The value is stored as JSON
// when it parses as JSON and as a string otherwise.
func NewCachePutCmd() *cobra.Command {
	var (
		repoName string
		ttl      string
	)

	cmd := &cobra.Command{
		Use:   "put <field> <value>",
		Short: "Store a field in a repository's cache row",
		Example: `  # Cache the remote version for twelve hours
  gitupdater cache put remote_version '"1.4.2"' --repo my-plugin

  # Cache a tag list for ninety minutes
  gitupdater cache put tags '["1.0.0","1.1.0"]' --repo my-plugin --ttl 90m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			opts := []repocache.PutOption{repocache.WithRepo(repoName)}
			if ttl != "" {
				d, parseErr := repocache.ParseTTL(ttl)
				if parseErr != nil {
					return parseErr
				}
				opts = append(opts, repocache.WithTimeout(d))
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			if !a.cache.Put(cmd.Context(), args[0], parseValue(args[1]), opts...) {
				return fmt.Errorf("%w: field %q", repocache.ErrNotStored, args[0])
			}
			cmd.Printf("Cached %s for %s\n", args[0], displayRepo(repoName))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoName, "repo", "", "repository slug (default: the shared row)")
	cmd.Flags().StringVar(&ttl, "ttl", "", "row lifetime as hours or a duration such as 90m")
	return cmd
}

// NewCacheDeleteCmd creates the "cache delete" command.
func NewCacheDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [repo]",
		Short: "Delete a repository's cache row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			repoName := firstArg(args)
			if err = a.cache.Delete(cmd.Context(), repoName); err != nil {
				return fmt.Errorf("deleting cache row: %w", err)
			}
			cmd.Printf("Deleted cache row for %s\n", displayRepo(repoName))
			return nil
		},
	}
}

// NewCachePurgeCmd creates the "cache purge" command. On a terminal it asks
// for confirmation unless --yes is given.
func NewCachePurgeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every repo cache row",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if !yes && isTerminal(os.Stdin) {
				if !confirm(cmd, "Delete all cached repository data?") {
					cmd.Println("Aborted.")
					return nil
				}
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			n := a.cache.Purge(cmd.Context())
			cmd.Printf("Purged %d cache rows\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// cacheStatus is one line of "cache status".
type cacheStatus struct {
	Slug      string   `json:"slug"`
	Fresh     bool     `json:"fresh"`
	ExpiresIn string   `json:"expires_in,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// NewCacheStatusCmd creates the "cache status" command, which reports the
// freshness of every configured repository's row.
func NewCacheStatusCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache freshness for configured repositories",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err = validateOutput(output); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			statuses := collectCacheStatus(cmd, a)
			if output == outputJSON {
				return printJSON(cmd, statuses)
			}
			return renderCacheStatus(cmd, statuses, a.cache.Waiting(cmd.Context(), a.cfg.Slugs()...))
		},
	}

	cmd.Flags().StringVar(&output, "output", outputTable, "output format: table or json")
	return cmd
}

// collectCacheStatus reads the rows of all configured repositories in parallel.
func collectCacheStatus(cmd *cobra.Command, a *app) []cacheStatus {
	slugs := a.cfg.Slugs()
	statuses := make([]cacheStatus, len(slugs))
	now := time.Now()

	g, gCtx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())

	for i, slug := range slugs {
		g.Go(func() error {
			st := cacheStatus{Slug: slug}
			if rec, ok := a.cache.Get(gCtx, slug); ok {
				st.Fresh = true
				st.ExpiresIn = repocache.FormatDuration(rec.TimeUntilExpiration(now))
				st.Fields = sortedKeys(rec.Fields)
			}
			statuses[i] = st
			return nil
		})
	}
	// Goroutines never fail; misses are reported per row.
	_ = g.Wait()

	return statuses
}

func renderCacheStatus(cmd *cobra.Command, statuses []cacheStatus, waiting bool) error {
	if len(statuses) == 0 {
		cmd.Println("No repositories configured.")
		return nil
	}

	w := newTable(cmd)
	fmt.Fprintln(w, "Repository\tState\tExpires In\tFields")
	fmt.Fprintln(w, "----------\t-----\t----------\t------")
	for _, st := range statuses {
		state := "missing"
		expires := "-"
		if st.Fresh {
			state = "fresh"
			expires = st.ExpiresIn
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.Slug, state, expires, strings.Join(st.Fields, ","))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	if waiting {
		cmd.Println("\nSome repositories are waiting for a refresh.")
	}
	return nil
}

// parseValue decodes s as JSON, falling back to the raw string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func confirm(cmd *cobra.Command, question string) bool {
	cmd.Printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func displayRepo(name string) string {
	if name == "" {
		return repocache.DefaultSlug
	}
	return name
}

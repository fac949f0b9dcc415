package repo

import (
	"strings"

	"github.com/rshade/gitupdater/internal/config"
)

// FallbackSlug strips the last dash-delimited segment from an installed slug,
// undoing the "<repo>-<branch>" directory naming of archive downloads.
// A slug without a dash yields "".
func FallbackSlug(installed string) string {
	i := strings.LastIndex(installed, "-")
	if i < 0 {
		return ""
	}
	return installed[:i]
}

// ResolveSlug maps an installed directory name onto a configured repository slug.
//
// Each repo is compared by slug and by the directory of its main file. An
// exact match on installed wins immediately. Otherwise a match on the
// fallback candidate is remembered and the last one found is returned.
// If installed is itself a configured slug, it doubles as the fallback.
func ResolveSlug(installed string, repos []config.Repo) (string, bool) {
	fallback := FallbackSlug(installed)
	for _, r := range repos {
		if r.Slug == installed {
			fallback = installed
			break
		}
	}

	var (
		match string
		found bool
	)
	for _, r := range repos {
		candidates := [2]string{r.Slug, r.Dir()}

		if candidates[0] == installed || candidates[1] == installed {
			return r.Slug, true
		}
		if fallback != "" && (candidates[0] == fallback || candidates[1] == fallback) {
			match, found = r.Slug, true
		}
	}
	return match, found
}

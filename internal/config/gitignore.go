package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// gitignoreContent keeps cache state out of version control when the
// gitupdater home lives inside a tracked directory.
const gitignoreContent = `# gitupdater state (auto-generated)
# config.yaml is tracked; cache rows and logs are not.
options/
options.db
options.db-*
*.log
`

// GitignoreContent returns the .gitignore written by EnsureGitignore.
func GitignoreContent() string {
	return gitignoreContent
}

// EnsureGitignore creates a .gitignore file in dir if one does not already
// exist. It reports whether a new file was written and never overwrites.
func EnsureGitignore(dir string) (bool, error) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	_, err := os.Stat(gitignorePath)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking .gitignore at %s: %w", gitignorePath, err)
	}

	if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, mkdirErr)
	}

	//nolint:gosec // .gitignore must be world-readable (0644).
	if writeErr := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644); writeErr != nil {
		return false, fmt.Errorf("writing .gitignore at %s: %w", gitignorePath, writeErr)
	}

	return true, nil
}

package main

import (
	"errors"
	"os"

	"github.com/rshade/gitupdater/internal/cli"
	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/pkg/version"
)

// Process exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitConfigError = 2
)

func main() {
	os.Exit(exitCode(run()))
}

func run() error {
	return cli.NewRootCmd(version.GetVersion()).Execute()
}

// exitCode maps a command error to the process exit status. Configuration
// problems get their own code so scripts can tell them apart.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrDuplicateSlug):
		return exitConfigError
	default:
		return exitError
	}
}

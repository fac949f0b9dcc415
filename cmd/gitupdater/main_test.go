package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/gitupdater/internal/cli"
	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/pkg/version"
)

func TestRun(t *testing.T) {
	t.Run("run function exists", func(t *testing.T) {
		_ = run
	})
}

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		if version.GetVersion() == "" {
			t.Error("expected version to be non-empty")
		}
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		if root == nil {
			t.Fatal("expected root command to be non-nil")
		}
		if root.Use == "" {
			t.Error("expected root command to have a use string")
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"generic error", errors.New("boom"), exitError},
		{"invalid config", fmt.Errorf("wrapped: %w", config.ErrInvalidConfig), exitConfigError},
		{"duplicate slug", errors.Join(errors.New("outer"), config.ErrDuplicateSlug), exitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

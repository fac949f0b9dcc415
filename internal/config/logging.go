package config

import (
	"github.com/rshade/gitupdater/internal/logging"
)

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
	Caller bool   `yaml:"caller,omitempty"`
}

// ToLoggingConfig converts LoggingConfig to logging.Config.
//
// The conversion applies these rules:
//   - Level, Format and Caller are copied directly
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
		Caller: lc.Caller,
	}
}

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyCache        = "cache"
	keyLogging      = "logging"
	keyHost         = "host"
	keyExtraHeaders = "extra_headers"
	keySkipUpdates  = "skip_updates"
	keyRepos        = "repos"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyCache:        true,
	keyLogging:      true,
	keyHost:         true,
	keyExtraHeaders: true,
	keySkipUpdates:  true,
	keyRepos:        true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Keys present in the overlay replace entire sections
// in the target. Keys absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file.
	if len(overlay) == 0 {
		return nil
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = decodeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// decodeSection decodes node into a fresh zero value and assigns it to the
// field named by key. yaml.v3 merges into existing maps, which would break
// the replace-whole-section rule.
func decodeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyCache:
		var v CacheConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
	case keyLogging:
		var v LoggingConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyHost:
		var v HostConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Host = v
	case keyExtraHeaders:
		var v map[string]string
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.ExtraHeaders = v
	case keySkipUpdates:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.SkipUpdates = v
	case keyRepos:
		var v []Repo
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Repos = v
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

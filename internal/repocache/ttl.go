package repocache

import (
	"fmt"
	"strconv"
	"time"
)

// TTL configuration constants and defaults.
const (
	// DefaultHours is the default lifetime of a cache row.
	DefaultHours = 12

	// DefaultTTL is DefaultHours as a duration.
	DefaultTTL = DefaultHours * time.Hour

	// MinTTL is the shortest accepted configured lifetime.
	MinTTL = time.Minute

	// MaxTTL is the longest accepted configured lifetime (30 days).
	MaxTTL = 30 * 24 * time.Hour

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24

	// EnvCacheHours overrides the default lifetime in hours.
	EnvCacheHours = "GITUPDATER_CACHE_HOURS"
)

// ErrInvalidTTL is returned for lifetimes outside [MinTTL, MaxTTL].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", MinTTL, MaxTTL)

// HoursFromEnv reads the lifetime from EnvCacheHours through lookupEnv. The
// value is parsed by ParseTTL and must be a whole number of hours, so "6" and
// "6h" are accepted while "90m" is not. ok is false when the variable is unset
// or unusable.
func HoursFromEnv(lookupEnv func(string) (string, bool)) (int, bool) {
	v, ok := lookupEnv(EnvCacheHours)
	if !ok || v == "" {
		return 0, false
	}
	d, err := ParseTTL(v)
	if err != nil || d%time.Hour != 0 {
		return 0, false
	}
	return int(d / time.Hour), true
}

// ParseTTL parses a lifetime given as:
// - an integer number of hours: "12".
// - a duration string: "90m", "1h30m".
func ParseTTL(s string) (time.Duration, error) {
	var d time.Duration
	if hours, err := strconv.Atoi(s); err == nil {
		d = time.Duration(hours) * time.Hour
	} else {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", parseErr)
		}
		d = parsed
	}

	if d < MinTTL || d > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, d)
	}
	return d, nil
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "30s", "5m", "2h30m", "3d2h".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// parseDuration parses a non-negative Go duration. Empty means def; an
// explicit "0s" stays zero.
func parseDuration(path, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// parsePositiveDuration is parseDuration that also rejects zero.
func parsePositiveDuration(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := parseDuration(path, raw, def)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("%s: duration must be > 0", path)
	}
	return d, nil
}

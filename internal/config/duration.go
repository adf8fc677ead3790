package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration-valued fields (telegram.poll_timeout, storage.busy_timeout,
// notifier.retry_base, ingest.timeout, ...) are Go duration strings such
// as "500ms" or "10s". They stay strings in Config so the file format is
// uniform; callers parse them with the helpers below when mapping config
// into service settings.

// ParseDurationField parses one such field. Empty input is not an error,
// it parses to zero so the caller can substitute its own default.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	case d < 0:
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with the zero-means-default
// substitution applied.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

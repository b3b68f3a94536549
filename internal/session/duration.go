package session

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidDurationError reports a duration string that no parse rule accepted.
type InvalidDurationError struct {
	Input string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("can't parse duration '%s'", e.Input)
}

// ParseDuration converts a human duration string into whole seconds.
// Accepted forms, tried in order: "1h" / "1.5h" (hours), "25m" (minutes),
// "30" (bare digits are minutes), "45.5" (plain seconds). Fractions are
// truncated toward zero. A branch that fails to parse falls through to
// the next; when nothing matches the result is an *InvalidDurationError.
func ParseDuration(s string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))

	if strings.HasSuffix(trimmed, "h") {
		if v, err := strconv.ParseFloat(trimmed[:len(trimmed)-1], 64); err == nil {
			return int(v * 3600), nil
		}
	}
	if strings.HasSuffix(trimmed, "m") {
		if v, err := strconv.ParseFloat(trimmed[:len(trimmed)-1], 64); err == nil {
			return int(v * 60), nil
		}
	}
	if isAllDigits(trimmed) {
		if v, err := strconv.Atoi(trimmed); err == nil {
			return v * 60, nil
		}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int(v), nil
	}
	return 0, &InvalidDurationError{Input: s}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HumanDuration renders seconds the way the countdown and history show
// them: "59s", "25m", "1h30m".
func HumanDuration(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	m := sec / 60
	h := m / 60
	m = m % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateFormats = map[string]string{
	"datetime": "2006-01-02T15:04:05Z",
	"date":     "2006-01-02",
	"time":     "15:04:05",
}

// ExpandDate expands a relative date expression of the form "<delta>|<format>"
// into an absolute value rendered at now, e.g. "2h|date" is two hours from
// now formatted as a date. The delta part may be empty ("|datetime" is now).
// Supported delta units: w (weeks), d (days), h (hours), m (minutes).
// Values without a "|" pass through unchanged.
func ExpandDate(value string, now time.Time) (string, error) {
	if !strings.Contains(value, "|") {
		return value, nil
	}

	parts := strings.SplitN(value, "|", 2)
	deltaRaw := strings.TrimSpace(parts[0])
	formatRaw := strings.TrimSpace(parts[1])

	format, ok := dateFormats[formatRaw]
	if !ok {
		return "", fmt.Errorf("unsupported date format %q: supported formats are 'date', 'time' and 'datetime', example '2h|date'", formatRaw)
	}

	var delta time.Duration
	if deltaRaw != "" {
		amount, err := strconv.Atoi(deltaRaw[:len(deltaRaw)-1])
		if err != nil {
			return "", fmt.Errorf("invalid delta value in %q: %w", value, err)
		}
		switch strings.ToLower(deltaRaw[len(deltaRaw)-1:]) {
		case "w":
			delta = time.Duration(amount) * 7 * 24 * time.Hour
		case "d":
			delta = time.Duration(amount) * 24 * time.Hour
		case "h":
			delta = time.Duration(amount) * time.Hour
		case "m":
			delta = time.Duration(amount) * time.Minute
		default:
			return "", fmt.Errorf("unsupported delta type in %q: supported delta types are 'w', 'd', 'h' and 'm', example '2h|date'", value)
		}
	}

	return now.Add(delta).UTC().Format(format), nil
}

package utils

import (
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// ParseHTTPDate returns time.Time from an HTTP date header value.
// RFC 1123 is tried first, then the older formats still seen in the wild.
func ParseHTTPDate(t string) (time.Time, error) {
	parsed, err := http.ParseTime(t)
	if err != nil {
		return time.Time{}, xerrors.Errorf("failed to parse HTTP date %q: %w", t, err)
	}
	return parsed, nil
}

// FormatHTTPDate returns an HTTP date header value from time.Time
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

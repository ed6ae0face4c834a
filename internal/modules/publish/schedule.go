package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// localtimePath allows us to point timezone detection elsewhere in tests
var localtimePath = "/etc/localtime"

var zoneinfoPattern = regexp.MustCompile(`/zoneinfo/(.+)$`)

// Layouts carrying their own offset
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Layouts interpreted in the publish timezone
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParsePublishAt reads a local schedule time and returns it in UTC, as the
// API expects ("2006-01-02T15:04:05Z"). Values with an explicit offset
// ignore tz.
func ParsePublishAt(value, tz string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return formatUTC(t), nil
		}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return formatUTC(t), nil
		}
	}
	return "", fmt.Errorf("publish-at must be ISO format: YYYY-MM-DD HH:MM, got %q", value)
}

func formatUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// DetectTimezone returns the system IANA zone from TZ or the /etc/localtime
// symlink, or "" when neither is usable.
func DetectTimezone(lookupEnv func(string) (string, bool)) string {
	if tz, ok := lookupEnv("TZ"); ok && strings.TrimSpace(tz) != "" {
		return strings.TrimPrefix(strings.TrimSpace(tz), ":")
	}

	if _, err := os.Lstat(localtimePath); err != nil {
		return ""
	}
	target, err := filepath.EvalSymlinks(localtimePath)
	if err != nil {
		return ""
	}
	if m := zoneinfoPattern.FindStringSubmatch(target); m != nil {
		return m[1]
	}
	return ""
}

package publish

import (
	"regexp"
	"strings"

	"github.com/antoniolg/agent-kit/internal/storage"
)

var (
	emptyLinkPattern  = regexp.MustCompile(`\[([^\]]*)\]\(\s*\)`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// EnsurePromo puts the promo line at the head of the description unless it
// is already there. Applying it twice is a no-op.
func EnsurePromo(description, promo string) string {
	if promo == "" {
		return description
	}
	if strings.HasPrefix(strings.TrimSpace(description), promo) {
		return description
	}
	return promo + "\n\n" + description
}

// StripSelfURL removes the video's own watch and short links. Markdown
// links left without a target collapse to their text.
func StripSelfURL(description, videoID string) string {
	if videoID == "" {
		return description
	}
	cleaned := description
	for _, url := range []string{storage.WatchURL(videoID), storage.ShortURL(videoID)} {
		cleaned = strings.ReplaceAll(cleaned, url, "")
	}
	cleaned = emptyLinkPattern.ReplaceAllString(cleaned, "$1")
	cleaned = blankLinesPattern.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

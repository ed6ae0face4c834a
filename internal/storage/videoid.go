// Package storage handles the sentinel files that hand a video identifier
// from one pipeline command to the next.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// WatchURLPrefix is the canonical watch URL without the identifier
	WatchURLPrefix = "https://www.youtube.com/watch?v="
	// ShortURLPrefix is the youtu.be short link without the identifier
	ShortURLPrefix = "https://youtu.be/"

	// URLFileName is written next to the identifier file
	URLFileName = "video_url.txt"
)

// ErrMissingVideoID means no valid identifier was found where one was required
var ErrMissingVideoID = errors.New("no valid video id")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidVideoID reports whether id has the shape of a platform identifier
func IsValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// WatchURL returns the canonical watch URL for id
func WatchURL(id string) string {
	return WatchURLPrefix + id
}

// ShortURL returns the youtu.be link for id
func ShortURL(id string) string {
	return ShortURLPrefix + id
}

// ReadVideoID returns the identifier stored at path. A missing file or
// malformed content yields ErrMissingVideoID.
func ReadVideoID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrMissingVideoID, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	id := strings.TrimSpace(string(data))
	if !IsValidVideoID(id) {
		return "", fmt.Errorf("%w: %s contains %q", ErrMissingVideoID, path, id)
	}
	return id, nil
}

// WriteVideoID stores id at path
func WriteVideoID(path, id string) error {
	if !IsValidVideoID(id) {
		return fmt.Errorf("refusing to store malformed video id %q", id)
	}
	return writeAtomic(path, []byte(id))
}

// URLFilePath is the URL sentinel that lives next to the identifier file
func URLFilePath(idPath string) string {
	return filepath.Join(filepath.Dir(idPath), URLFileName)
}

// WriteWatchURL writes the canonical watch URL next to the identifier file
// and returns the path written.
func WriteWatchURL(idPath, id string) (string, error) {
	urlPath := URLFilePath(idPath)
	if err := writeAtomic(urlPath, []byte(WatchURL(id))); err != nil {
		return "", err
	}
	return urlPath, nil
}

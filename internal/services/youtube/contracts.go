package youtube

import (
	"context"
	"io"

	"google.golang.org/api/youtube/v3"
)

// UploadChunkSize is the resumable upload chunk size
const UploadChunkSize = 8 * 1024 * 1024

// ProgressFunc receives upload progress after each chunk
type ProgressFunc func(current, total int64)

// VideoService defines the video hosting operations the publisher needs
type VideoService interface {
	// InsertVideo uploads media with the given metadata and returns the created resource
	InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, notifySubscribers bool, progress ProgressFunc) (*youtube.Video, error)

	// UpdateVideo replaces the snippet and status of an existing video
	UpdateVideo(ctx context.Context, video *youtube.Video) (*youtube.Video, error)

	// SetThumbnail uploads a custom thumbnail image
	SetThumbnail(ctx context.Context, videoID string, image io.Reader) error

	// ListTopLevelComments returns the original text of the most recent top-level comments
	ListTopLevelComments(ctx context.Context, videoID string, maxResults int64) ([]string, error)

	// InsertComment posts a new top-level comment
	InsertComment(ctx context.Context, videoID string, text string) error
}

// ConnectFunc builds an authenticated VideoService
type ConnectFunc func(ctx context.Context, opts AuthOptions) (VideoService, error)

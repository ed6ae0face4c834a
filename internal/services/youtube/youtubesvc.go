package youtube

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var videoParts = []string{"snippet", "status"}

// Service implements VideoService on top of the YouTube Data API
type Service struct {
	api *youtube.Service
}

// NewService wraps an API client
func NewService(api *youtube.Service) *Service {
	return &Service{api: api}
}

// Connect authorizes with the cached credential flow and returns a ready VideoService
func Connect(ctx context.Context, opts AuthOptions) (VideoService, error) {
	auth, err := NewAuthenticator(opts)
	if err != nil {
		return nil, err
	}

	tokenSource, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	api, err := youtube.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return NewService(api), nil
}

// InsertVideo uploads a video using resumable chunked transfer
func (s *Service) InsertVideo(ctx context.Context, video *youtube.Video, media io.Reader, notifySubscribers bool, progress ProgressFunc) (*youtube.Video, error) {
	call := s.api.Videos.Insert(videoParts, video).
		NotifySubscribers(notifySubscribers).
		Media(media, googleapi.ChunkSize(UploadChunkSize))
	if progress != nil {
		call = call.ProgressUpdater(googleapi.ProgressUpdater(progress))
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("video upload failed: %w", err)
	}
	return resp, nil
}

// UpdateVideo replaces the snippet and status of an existing video
func (s *Service) UpdateVideo(ctx context.Context, video *youtube.Video) (*youtube.Video, error) {
	resp, err := s.api.Videos.Update(videoParts, video).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update video %s: %w", video.Id, err)
	}
	return resp, nil
}

// SetThumbnail uploads a custom thumbnail image
func (s *Service) SetThumbnail(ctx context.Context, videoID string, image io.Reader) error {
	if _, err := s.api.Thumbnails.Set(videoID).Media(image).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to set thumbnail for %s: %w", videoID, err)
	}
	return nil
}

// ListTopLevelComments returns the original text of recent top-level comments, newest first
func (s *Service) ListTopLevelComments(ctx context.Context, videoID string, maxResults int64) ([]string, error) {
	resp, err := s.api.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(maxResults).
		Order("time").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for %s: %w", videoID, err)
	}

	texts := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		texts = append(texts, strings.TrimSpace(item.Snippet.TopLevelComment.Snippet.TextOriginal))
	}
	return texts, nil
}

// InsertComment posts a new top-level comment
func (s *Service) InsertComment(ctx context.Context, videoID string, text string) error {
	thread := &youtube.CommentThread{
		Snippet: &youtube.CommentThreadSnippet{
			VideoId: videoID,
			TopLevelComment: &youtube.Comment{
				Snippet: &youtube.CommentSnippet{TextOriginal: text},
			},
		},
	}
	if _, err := s.api.CommentThreads.Insert([]string{"snippet"}, thread).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert comment on %s: %w", videoID, err)
	}
	return nil
}

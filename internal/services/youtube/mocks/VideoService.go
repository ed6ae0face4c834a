// Package mocks holds testify mocks for the YouTube service contracts.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	youtubeapi "google.golang.org/api/youtube/v3"

	youtube "github.com/antoniolg/agent-kit/internal/services/youtube"
)

// MockVideoService is a mock implementation of youtube.VideoService
type MockVideoService struct {
	mock.Mock
}

var _ youtube.VideoService = (*MockVideoService)(nil)

// NewMockVideoService creates a mock and registers expectation checks on cleanup
func NewMockVideoService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockVideoService {
	m := &MockVideoService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// InsertVideo provides a mock function
func (m *MockVideoService) InsertVideo(ctx context.Context, video *youtubeapi.Video, media io.Reader, notifySubscribers bool, progress youtube.ProgressFunc) (*youtubeapi.Video, error) {
	ret := m.Called(ctx, video, media, notifySubscribers, progress)
	var out *youtubeapi.Video
	if v := ret.Get(0); v != nil {
		out = v.(*youtubeapi.Video)
	}
	return out, ret.Error(1)
}

// UpdateVideo provides a mock function
func (m *MockVideoService) UpdateVideo(ctx context.Context, video *youtubeapi.Video) (*youtubeapi.Video, error) {
	ret := m.Called(ctx, video)
	var out *youtubeapi.Video
	if v := ret.Get(0); v != nil {
		out = v.(*youtubeapi.Video)
	}
	return out, ret.Error(1)
}

// SetThumbnail provides a mock function
func (m *MockVideoService) SetThumbnail(ctx context.Context, videoID string, image io.Reader) error {
	ret := m.Called(ctx, videoID, image)
	return ret.Error(0)
}

// ListTopLevelComments provides a mock function
func (m *MockVideoService) ListTopLevelComments(ctx context.Context, videoID string, maxResults int64) ([]string, error) {
	ret := m.Called(ctx, videoID, maxResults)
	var out []string
	if v := ret.Get(0); v != nil {
		out = v.([]string)
	}
	return out, ret.Error(1)
}

// InsertComment provides a mock function
func (m *MockVideoService) InsertComment(ctx context.Context, videoID string, text string) error {
	ret := m.Called(ctx, videoID, text)
	return ret.Error(0)
}

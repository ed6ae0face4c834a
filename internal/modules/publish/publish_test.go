package publish

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/services/youtube"
	"github.com/antoniolg/agent-kit/internal/services/youtube/mocks"
	"github.com/antoniolg/agent-kit/internal/utils"
)

const testVideoID = "abcDEF123_-"

type fixture struct {
	dir    string
	video  string
	secret string
	cfg    *config.Config
	svc    *mocks.MockVideoService
	opts   youtube.AuthOptions
	alerts *recordingNotifier
	module *Module
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

type recordingNotifier struct {
	subjects []string
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, subject, message string) error {
	n.subjects = append(n.subjects, subject)
	n.messages = append(n.messages, message)
	return n.err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dir: t.TempDir(), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	f.video = filepath.Join(f.dir, "final.mp4")
	require.NoError(t, os.WriteFile(f.video, bytes.Repeat([]byte("v"), 1024), 0644))
	f.secret = filepath.Join(f.dir, "client_secret.json")
	require.NoError(t, os.WriteFile(f.secret, []byte(`{"installed":{}}`), 0644))

	f.cfg = config.Default()
	f.cfg.YouTube.PromoLine = promo
	f.cfg.YouTube.ClientSecret = f.secret
	f.cfg.YouTube.Tags = config.StringList{"go", "ai"}

	f.svc = mocks.NewMockVideoService(t)
	f.alerts = &recordingNotifier{}
	connect := func(ctx context.Context, opts youtube.AuthOptions) (youtube.VideoService, error) {
		f.opts = opts
		return f.svc, nil
	}
	f.module = New(f.cfg, connect, f.alerts).(*Module)
	f.module.lookupEnv = noEnv

	t.Cleanup(utils.SetOutput(f.stdout, f.stderr))
	return f
}

func hasStatus(privacy, publishAt string) func(*youtubeapi.Video) bool {
	return func(v *youtubeapi.Video) bool {
		return v.Status != nil && v.Status.PrivacyStatus == privacy && v.Status.PublishAt == publishAt
	}
}

func TestModule_Validate(t *testing.T) {
	f := newFixture(t)
	descFile := filepath.Join(f.dir, "description.txt")
	require.NoError(t, os.WriteFile(descFile, []byte("Body"), 0644))

	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr string
	}{
		{name: "upload", params: map[string]interface{}{"title": "T", "video": f.video, "descriptionFile": descFile}},
		{name: "update without video", params: map[string]interface{}{"title": "T", "updateVideoId": testVideoID, "description": "Body"}},
		{name: "missing title", params: map[string]interface{}{"video": f.video, "description": "Body"}, wantErr: "title is required"},
		{name: "missing video", params: map[string]interface{}{"title": "T", "description": "Body"}, wantErr: "video is required"},
		{name: "malformed update id", params: map[string]interface{}{"title": "T", "updateVideoId": "short", "description": "Body"}, wantErr: "not a valid video id"},
		{name: "missing description", params: map[string]interface{}{"title": "T", "video": f.video}, wantErr: "description is required"},
		{name: "missing description file", params: map[string]interface{}{"title": "T", "video": f.video, "descriptionFile": filepath.Join(f.dir, "nope.txt")}, wantErr: "file not found"},
		{name: "missing thumbnail", params: map[string]interface{}{"title": "T", "video": f.video, "description": "Body", "thumbnail": filepath.Join(f.dir, "nope.png")}, wantErr: "file not found"},
		{name: "missing client secret", params: map[string]interface{}{"title": "T", "video": f.video, "description": "Body", "clientSecret": filepath.Join(f.dir, "none.json")}, wantErr: "clientSecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.module.Validate(tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestModule_ExecuteUpload(t *testing.T) {
	f := newFixture(t)
	idFile := filepath.Join(f.dir, "video_id.txt")
	thumb := filepath.Join(f.dir, "thumb.png")
	require.NoError(t, os.WriteFile(thumb, []byte("png"), 0644))

	description := "Body\n\nFull video: [here](https://youtu.be/" + testVideoID + ")"
	f.svc.On("InsertVideo", mock.Anything, mock.MatchedBy(func(v *youtubeapi.Video) bool {
		return hasStatus("unlisted", "")(v) &&
			v.Id == "" &&
			strings.HasPrefix(v.Snippet.Description, promo+"\n\n") &&
			v.Snippet.CategoryId == "27" &&
			assert.ObjectsAreEqual([]string{"go", "ai"}, v.Snippet.Tags)
	}), mock.Anything, false, mock.Anything).Run(func(args mock.Arguments) {
		progress := args.Get(4).(youtube.ProgressFunc)
		progress(512, 1024)
		progress(1024, 1024)
	}).Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()
	f.svc.On("SetThumbnail", mock.Anything, testVideoID, mock.Anything).Return(nil).Once()
	f.svc.On("ListTopLevelComments", mock.Anything, testVideoID, int64(20)).Return([]string{"nice video"}, nil).Once()
	f.svc.On("InsertComment", mock.Anything, testVideoID, promo).Return(nil).Once()
	f.svc.On("UpdateVideo", mock.Anything, mock.MatchedBy(func(v *youtubeapi.Video) bool {
		return v.Id == testVideoID && hasStatus("private", "2026-01-15T17:00:00Z")(v) &&
			strings.Contains(v.Snippet.Description, "https://youtu.be/"+testVideoID)
	})).Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()
	f.svc.On("UpdateVideo", mock.Anything, mock.MatchedBy(func(v *youtubeapi.Video) bool {
		return v.Id == testVideoID && hasStatus("private", "2026-01-15T17:00:00Z")(v) &&
			strings.HasSuffix(v.Snippet.Description, "Full video: here")
	})).Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()

	result, err := f.module.Execute(context.Background(), map[string]interface{}{
		"video":         f.video,
		"title":         "Go generics",
		"description":   description,
		"thumbnail":     thumb,
		"publishAt":     "2026-01-15 18:00",
		"timezone":      "Europe/Madrid",
		"outputVideoId": idFile,
		"privacyStatus": "public",
	})
	require.NoError(t, err)

	assert.Equal(t, testVideoID, result.Outputs["videoId"])
	assert.Equal(t, "2026-01-15T17:00:00Z", result.Metadata["publishAt"])
	data, err := os.ReadFile(idFile)
	require.NoError(t, err)
	assert.Equal(t, testVideoID, string(data))

	assert.Equal(t, f.secret, f.opts.ClientSecretPath)
	assert.Equal(t, config.DefaultTokenPath, f.opts.TokenPath)

	assert.Contains(t, f.stderr.String(), `Ignoring privacy status "public"`)
	assert.Contains(t, f.stdout.String(), "Upload 100%")
	assert.Contains(t, f.stdout.String(), "Scheduled for: 2026-01-15T17:00:00Z (UTC)")

	require.Len(t, f.alerts.subjects, 1)
	assert.Equal(t, "Video scheduled: Go generics", f.alerts.subjects[0])
	assert.Contains(t, f.alerts.messages[0], "https://www.youtube.com/watch?v="+testVideoID)
}

func TestModule_ExecuteUploadSkipsExistingComment(t *testing.T) {
	f := newFixture(t)
	f.cfg.YouTube.PromoComment = "Curso completo aquí"
	notify := true

	f.svc.On("InsertVideo", mock.Anything, mock.Anything, mock.Anything, true, mock.Anything).
		Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()
	f.svc.On("ListTopLevelComments", mock.Anything, testVideoID, int64(20)).
		Return([]string{"first!", "  Curso completo aquí  "}, nil).Once()
	f.svc.On("UpdateVideo", mock.Anything, mock.MatchedBy(hasStatus("private", ""))).
		Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()

	_, err := f.module.Execute(context.Background(), map[string]interface{}{
		"video":             f.video,
		"title":             "T",
		"description":       "Body",
		"notifySubscribers": notify,
	})
	require.NoError(t, err)

	f.svc.AssertNotCalled(t, "InsertComment", mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, f.stdout.String(), "Promo comment already exists; skipping.")
	assert.Equal(t, "Video uploaded: T", f.alerts.subjects[0])
}

func TestModule_ExecuteCommentFailuresAreWarnings(t *testing.T) {
	f := newFixture(t)
	f.alerts.err = errors.New("sns down")

	f.svc.On("InsertVideo", mock.Anything, mock.Anything, mock.Anything, false, mock.Anything).
		Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()
	f.svc.On("ListTopLevelComments", mock.Anything, testVideoID, int64(20)).
		Return(nil, errors.New("commentsDisabled")).Once()
	f.svc.On("InsertComment", mock.Anything, testVideoID, promo).
		Return(errors.New("forbidden")).Once()
	f.svc.On("UpdateVideo", mock.Anything, mock.Anything).
		Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()

	_, err := f.module.Execute(context.Background(), map[string]interface{}{
		"video": f.video, "title": "T", "description": "Body",
	})
	require.NoError(t, err)

	assert.Contains(t, f.stderr.String(), "could not list comments before insert")
	assert.Contains(t, f.stderr.String(), "could not insert promo comment (continuing)")
	assert.Contains(t, f.stderr.String(), "could not send release alert")
}

func TestModule_ExecuteUploadMissingID(t *testing.T) {
	f := newFixture(t)
	f.svc.On("InsertVideo", mock.Anything, mock.Anything, mock.Anything, false, mock.Anything).
		Return(&youtubeapi.Video{}, nil).Once()

	_, err := f.module.Execute(context.Background(), map[string]interface{}{
		"video": f.video, "title": "T", "description": "Body",
	})
	assert.ErrorIs(t, err, ErrMissingUploadID)
	assert.Empty(t, f.alerts.subjects)
}

func TestModule_ExecuteUpdate(t *testing.T) {
	f := newFixture(t)
	descFile := filepath.Join(f.dir, "description.txt")
	require.NoError(t, os.WriteFile(descFile, []byte("\nBody https://www.youtube.com/watch?v="+testVideoID+"\n"), 0644))

	stripped := func(v *youtubeapi.Video) bool {
		return v.Id == testVideoID && v.Snippet.Description == promo+"\n\nBody"
	}
	f.svc.On("UpdateVideo", mock.Anything, mock.MatchedBy(func(v *youtubeapi.Video) bool {
		return stripped(v) && hasStatus("unlisted", "")(v)
	})).Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()
	f.svc.On("ListTopLevelComments", mock.Anything, testVideoID, int64(20)).Return([]string{}, nil).Once()
	f.svc.On("InsertComment", mock.Anything, testVideoID, promo).Return(nil).Once()
	f.svc.On("UpdateVideo", mock.Anything, mock.MatchedBy(func(v *youtubeapi.Video) bool {
		return stripped(v) && hasStatus("private", "")(v) && v.Snippet.CategoryId == "22"
	})).Return(&youtubeapi.Video{Id: testVideoID}, nil).Once()

	result, err := f.module.Execute(context.Background(), map[string]interface{}{
		"title":           "T",
		"updateVideoId":   testVideoID,
		"descriptionFile": descFile,
		"categoryId":      "22",
	})
	require.NoError(t, err)
	assert.Equal(t, true, result.Metadata["updated"])
	f.svc.AssertNotCalled(t, "InsertVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestModule_ExecuteRequiresTimezone(t *testing.T) {
	f := newFixture(t)
	orig := localtimePath
	localtimePath = filepath.Join(f.dir, "no-localtime")
	defer func() { localtimePath = orig }()

	_, err := f.module.Execute(context.Background(), map[string]interface{}{
		"video": f.video, "title": "T", "description": "Body", "publishAt": "2026-01-15 18:00",
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "timezone", verr.Field)
}

func TestModule_ExecuteConnectFailure(t *testing.T) {
	f := newFixture(t)
	f.module.connect = func(ctx context.Context, opts youtube.AuthOptions) (youtube.VideoService, error) {
		return nil, errors.New("failed to refresh token")
	}

	_, err := f.module.Execute(context.Background(), map[string]interface{}{
		"video": f.video, "title": "T", "description": "Body",
	})
	assert.ErrorContains(t, err, "failed to refresh token")
}

func TestBuildRequestResolution(t *testing.T) {
	f := newFixture(t)
	f.cfg.YouTube.MadeForKids = true
	f.cfg.YouTube.NotifySubscribers = true
	f.cfg.YouTube.CategoryID = "28"
	f.cfg.YouTube.DefaultLanguage = "es"

	off := false
	req, err := f.module.buildRequest(Params{
		Title:             "T",
		Description:       "Body",
		Tags:              " a, ,b ",
		NotifySubscribers: &off,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, req.tags)
	assert.Equal(t, "28", req.categoryID)
	assert.False(t, req.notifySubscribers)
	assert.Equal(t, promo, req.promoComment)

	v := req.video("", "unlisted", req.description)
	assert.True(t, v.Status.SelfDeclaredMadeForKids)
	assert.Contains(t, v.Status.ForceSendFields, "SelfDeclaredMadeForKids")
	assert.Equal(t, "es", v.Snippet.DefaultLanguage)
}

func TestProgressLogger(t *testing.T) {
	var out bytes.Buffer
	defer utils.SetOutput(&out, &bytes.Buffer{})()

	progress := progressLogger(200)
	progress(50, 0)
	progress(50, 0)
	progress(200, 200)

	assert.Equal(t, 1, strings.Count(out.String(), "Upload 25%"))
	assert.Contains(t, out.String(), "Upload 100%")
}

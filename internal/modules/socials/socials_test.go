package socials

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniolg/agent-kit/internal/config"
	"github.com/antoniolg/agent-kit/internal/runner"
	"github.com/antoniolg/agent-kit/internal/utils"
)

func TestExtractImageURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "url", raw: `{"url":"https://cdn/a.png","path":"/a.png"}`, want: "https://cdn/a.png"},
		{name: "public_url", raw: `{"public_url":"https://cdn/b.png"}`, want: "https://cdn/b.png"},
		{name: "publicUrl", raw: `{"publicUrl":"https://cdn/c.png"}`, want: "https://cdn/c.png"},
		{name: "path", raw: `{"id":"1","path":"https://cdn/d.png"}`, want: "https://cdn/d.png"},
		{name: "nested file", raw: `{"file":{"publicUrl":"https://cdn/e.png"}}`, want: "https://cdn/e.png"},
		{name: "top level wins over nested", raw: `{"file":{"url":"nested"},"path":"top"}`, want: "top"},
		{name: "null skipped", raw: `{"url":null,"file":{"path":"https://cdn/f.png"}}`, want: "https://cdn/f.png"},
		{name: "nothing", raw: `{"id":"1"}`, want: ""},
		{name: "not json", raw: "uploaded!", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractImageURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "Nuevo vídeo sobre golang y ai", StripHashes("Nuevo vídeo sobre #golang y #ai"))
	assert.Equal(t, "https://youtu.be/ab%5Fcd?si=x%5Fy", EncodeUnderscores("https://youtu.be/ab_cd?si=x_y"))
	assert.Equal(t, "https://youtu.be/abcd", EncodeUnderscores("https://youtu.be/abcd"))
}

func setup(t *testing.T) (*config.Config, string, string) {
	t.Helper()
	dir := t.TempDir()
	textFile := filepath.Join(dir, "post.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("\nNuevo #vídeo\n"), 0644))
	image := filepath.Join(dir, "thumb.png")
	require.NoError(t, os.WriteFile(image, []byte("png"), 0644))

	cfg := config.Default()
	cfg.Postiz = catalogue()
	return cfg, textFile, image
}

func TestExecuteSchedulesPerIntegration(t *testing.T) {
	cfg, textFile, image := setup(t)
	var stdout bytes.Buffer
	defer utils.SetOutput(&stdout, &bytes.Buffer{})()

	fake := runner.NewFake().
		On("postiz", `{"file":{"url":"https://cdn/thumb.png"}}`, nil).
		On("postiz", "", nil).
		On("postiz", "", nil)

	result, err := New(cfg, fake).Execute(context.Background(), map[string]interface{}{
		"textFile":      textFile,
		"scheduledDate": "2026-02-01T10:00:00+01:00",
		"commentUrl":    "https://youtu.be/a_b",
		"image":         image,
	})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 3)
	assert.Equal(t, []string{"upload", "--file-path", image}, fake.Calls[0].Args)

	comment := config.DefaultCommentText + " https://youtu.be/a%5Fb"
	for i, id := range []string{"li-1", "raw-id-7"} {
		assert.Equal(t, []string{
			"posts", "create",
			"--content", "Nuevo vídeo",
			"--content", comment,
			"--integrations", id,
			"--status", "scheduled",
			"--scheduled-date", "2026-02-01T10:00:00+01:00",
			"--images", "https://cdn/thumb.png",
		}, fake.Calls[i+1].Args)
	}

	assert.Equal(t, "li-1,raw-id-7", result.Outputs["integrations"])
	assert.Contains(t, stdout.String(), "Scheduled socials.")
}

func TestExecuteExplicitIntegrationsAndNoImageURL(t *testing.T) {
	cfg, textFile, image := setup(t)
	var stderr bytes.Buffer
	defer utils.SetOutput(&bytes.Buffer{}, &stderr)()

	fake := runner.NewFake().
		On("postiz", `{"id":"upload-1"}`, nil).
		On("postiz", "", nil)

	_, err := New(cfg, fake).Execute(context.Background(), map[string]interface{}{
		"textFile":      textFile,
		"scheduledDate": "2026-02-01T10:00:00Z",
		"commentUrl":    "https://youtu.be/x",
		"image":         image,
		"integrations":  "only-this",
		"commentText":   "Mira:",
	})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 2)
	post := fake.Calls[1].Args
	assert.Contains(t, post, "only-this")
	assert.Contains(t, post, "Mira: https://youtu.be/x")
	assert.NotContains(t, post, "--images")
	assert.Contains(t, stderr.String(), "posting without image")
}

func TestExecuteExcludeNetworkOverride(t *testing.T) {
	cfg, textFile, _ := setup(t)
	fake := runner.NewFake().On("postiz", "", nil).On("postiz", "", nil).On("postiz", "", nil)

	_, err := New(cfg, fake).Execute(context.Background(), map[string]interface{}{
		"textFile":       textFile,
		"scheduledDate":  "2026-02-01T10:00:00Z",
		"commentUrl":     "https://youtu.be/x",
		"excludeNetwork": "",
	})
	require.NoError(t, err)
	assert.Len(t, fake.Calls, 3)
}

func TestExecuteStopsOnPostFailure(t *testing.T) {
	cfg, textFile, _ := setup(t)
	fake := runner.NewFake().
		On("postiz", "", &runner.CommandError{Command: "postiz posts create", Stderr: "invalid integration"})

	_, err := New(cfg, fake).Execute(context.Background(), map[string]interface{}{
		"textFile": textFile, "scheduledDate": "2026-02-01T10:00:00Z", "commentUrl": "https://youtu.be/x",
	})
	assert.ErrorContains(t, err, "li-1")
	assert.ErrorContains(t, err, "invalid integration")
	assert.Len(t, fake.Calls, 1)
}

func TestValidate(t *testing.T) {
	cfg, textFile, _ := setup(t)
	m := New(cfg, runner.NewFake())

	assert.NoError(t, m.Validate(map[string]interface{}{
		"textFile": textFile, "scheduledDate": "2026-02-01T10:00:00Z", "commentUrl": "https://youtu.be/x",
	}))
	assert.ErrorContains(t, m.Validate(map[string]interface{}{
		"textFile": textFile, "commentUrl": "https://youtu.be/x",
	}), "scheduledDate is required")
	assert.ErrorIs(t, m.Validate(map[string]interface{}{
		"textFile": textFile, "scheduledDate": "2026-02-01T10:00:00Z", "commentUrl": "https://youtu.be/x", "group": "only_x",
	}), ErrNoIntegrations)
}

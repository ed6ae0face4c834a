package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniolg/agent-kit/internal/mod"
)

type stubModule struct {
	name    string
	outputs map[string]string
	err     error
	got     []map[string]interface{}
}

func (s *stubModule) Name() string                                 { return s.name }
func (s *stubModule) GetIO() mod.ModuleIO                          { return mod.ModuleIO{} }
func (s *stubModule) Validate(params map[string]interface{}) error { return nil }

func (s *stubModule) Execute(ctx context.Context, params map[string]interface{}) (mod.ModuleResult, error) {
	s.got = append(s.got, params)
	if s.err != nil {
		return mod.ModuleResult{}, s.err
	}
	return mod.ModuleResult{Outputs: s.outputs}, nil
}

func registryWith(t *testing.T, modules ...mod.Module) *mod.ModuleRegistry {
	t.Helper()
	reg := mod.NewModuleRegistry()
	for _, m := range modules {
		require.NoError(t, reg.Register(m))
	}
	return reg
}

const releaseYAML = `
name: weekly
steps:
  - name: cover
    module: compose
    parameters:
      video: raw.mp4
      thumbnail: cover.png
      output: final.mp4
  - name: upload
    module: publish
    parameters:
      file: ${steps.cover.video}
      introMs: 500
`

func TestRunPassesOutputsForward(t *testing.T) {
	wf, err := Parse([]byte(releaseYAML))
	require.NoError(t, err)

	compose := &stubModule{name: "compose", outputs: map[string]string{"video": "final.mp4"}}
	publish := &stubModule{name: "publish", outputs: map[string]string{"videoId": "abcdefghijk"}}

	state, err := wf.Run(context.Background(), registryWith(t, compose, publish))
	require.NoError(t, err)

	require.Len(t, publish.got, 1)
	assert.Equal(t, "final.mp4", publish.got[0]["file"])
	assert.Equal(t, 500, publish.got[0]["introMs"])
	assert.Equal(t, StepComplete, state.Status["upload"])
	assert.Equal(t, "abcdefghijk", state.Outputs["upload"]["videoId"])
	assert.NotEmpty(t, state.ID)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	wf, err := Parse([]byte(releaseYAML))
	require.NoError(t, err)

	compose := &stubModule{name: "compose", err: errors.New("ffmpeg exploded")}
	publish := &stubModule{name: "publish"}

	state, err := wf.Run(context.Background(), registryWith(t, compose, publish))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step cover")
	assert.Equal(t, StepFailed, state.Status["cover"])
	assert.Equal(t, StepPending, state.Status["upload"])
	assert.Empty(t, publish.got)
}

func TestRunFailsOnMissingOutput(t *testing.T) {
	wf, err := Parse([]byte(releaseYAML))
	require.NoError(t, err)

	compose := &stubModule{name: "compose", outputs: map[string]string{}}
	publish := &stubModule{name: "publish"}

	_, err = wf.Run(context.Background(), registryWith(t, compose, publish))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "produced no output video")
}

func TestRunUnknownModule(t *testing.T) {
	wf, err := Parse([]byte(releaseYAML))
	require.NoError(t, err)

	_, err = wf.Run(context.Background(), registryWith(t, &stubModule{name: "compose"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module publish not found")
}

func TestParseRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "steps:\n  - name: a\n    module: compose\n", "workflow name is required"},
		{"no steps", "name: x\n", "at least one step"},
		{"no module", "name: x\nsteps:\n  - name: a\n", "module is required"},
		{"duplicate", "name: x\nsteps:\n  - name: a\n    module: m\n  - name: a\n    module: m\n", "duplicate step name"},
		{"forward ref", "name: x\nsteps:\n  - name: a\n    module: m\n    parameters:\n      file: ${steps.b.video}\n  - name: b\n    module: m\n", "refers to b before it runs"},
		{"bad yaml", "name: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSampleRelease(t *testing.T) {
	wf, err := LoadFromFile("../../workflows/release.yaml")
	require.NoError(t, err)
	assert.Equal(t, "release", wf.Name)
	require.Len(t, wf.Steps, 4)
	assert.Equal(t, "https://youtu.be/${steps.upload.videoId}", wf.Steps[3].Parameters["commentUrl"])
}

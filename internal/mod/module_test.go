package mod

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModule struct {
	name        string
	io          ModuleIO
	validateErr error
	executed    bool
}

func (s *stubModule) Name() string    { return s.name }
func (s *stubModule) GetIO() ModuleIO { return s.io }

func (s *stubModule) Validate(params map[string]interface{}) error { return s.validateErr }

func (s *stubModule) Execute(ctx context.Context, params map[string]interface{}) (ModuleResult, error) {
	s.executed = true
	return ModuleResult{Outputs: map[string]string{"out": params["in"].(string)}}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewModuleRegistry()
	require.NoError(t, r.Register(&stubModule{name: "b"}))
	require.NoError(t, r.Register(&stubModule{name: "a"}))

	assert.Error(t, r.Register(&stubModule{name: "a"}))
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&stubModule{}))

	m, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Name())

	_, err = r.Get("missing")
	assert.Error(t, err)

	names := []string{}
	for _, m := range r.ListModules() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestRegistryRejectsBadIO(t *testing.T) {
	r := NewModuleRegistry()
	err := r.Register(&stubModule{
		name: "bad",
		io:   ModuleIO{RequiredInputs: []ModuleInput{{Name: "video", Type: "stream"}}},
	})
	assert.ErrorContains(t, err, "invalid type")

	err = r.Register(&stubModule{
		name: "unnamed",
		io:   ModuleIO{ProducedOutputs: []ModuleOutput{{Type: string(IOTypeFile)}}},
	})
	assert.ErrorContains(t, err, "empty name")
}

func TestRegistryRun(t *testing.T) {
	r := NewModuleRegistry()
	ok := &stubModule{name: "ok"}
	failing := &stubModule{name: "failing", validateErr: errors.New("bad params")}
	require.NoError(t, r.Register(ok))
	require.NoError(t, r.Register(failing))

	result, err := r.Run(context.Background(), "ok", map[string]interface{}{"in": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", result.Outputs["out"])
	assert.True(t, ok.executed)

	_, err = r.Run(context.Background(), "failing", map[string]interface{}{})
	assert.EqualError(t, err, "bad params")
	assert.False(t, failing.executed)
}

func TestParseParams(t *testing.T) {
	type params struct {
		Video   string `json:"video"`
		IntroMs int    `json:"introMs"`
		Notify  *bool  `json:"notifySubscribers"`
	}

	var p params
	require.NoError(t, ParseParams(map[string]interface{}{
		"video":             "in.mp4",
		"introMs":           750,
		"notifySubscribers": false,
	}, &p))
	assert.Equal(t, "in.mp4", p.Video)
	assert.Equal(t, 750, p.IntroMs)
	require.NotNil(t, p.Notify)
	assert.False(t, *p.Notify)

	assert.Error(t, ParseParams(nil, &p))
	assert.Error(t, ParseParams(map[string]interface{}{}, p))
	assert.Error(t, ParseParams(map[string]interface{}{"introMs": "soon"}, &p))
}

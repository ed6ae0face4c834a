package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecCommand re-runs the test binary as a stand-in for the real tool
func fakeExecCommand(ctx context.Context, command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is not a real test, it's used to mock exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	args = args[1:]

	switch args[0] {
	case "fail":
		fmt.Fprintln(os.Stderr, "something went wrong")
		os.Exit(3)
	default:
		fmt.Printf("  %s  \n", strings.Join(args[1:], "|"))
		os.Exit(0)
	}
}

func TestExecRun(t *testing.T) {
	execCommand = fakeExecCommand
	defer func() { execCommand = exec.CommandContext }()

	out, err := New().Run(context.Background(), "echo", "a", "b c")
	require.NoError(t, err)
	assert.Equal(t, "a|b c", out)
}

func TestExecRunFailureCarriesCommandAndStderr(t *testing.T) {
	execCommand = fakeExecCommand
	defer func() { execCommand = exec.CommandContext }()

	_, err := New().Run(context.Background(), "fail", "--flag", "two words")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, `fail --flag "two words"`, cmdErr.Command)
	assert.Equal(t, "something went wrong", cmdErr.Stderr)
	assert.Contains(t, err.Error(), "command failed: fail")
	assert.Contains(t, err.Error(), "something went wrong")

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestFormatCommand(t *testing.T) {
	assert.Equal(t, "ffmpeg -y -i in.mp4", FormatCommand("ffmpeg", "-y", "-i", "in.mp4"))
	assert.Equal(t, `postiz --content "hello world" ""`, FormatCommand("postiz", "--content", "hello world", ""))
}

func TestFakeRunner(t *testing.T) {
	f := NewFake().On("listmonk", "first", nil).On("listmonk", "", errors.New("boom"))

	out, err := f.Run(context.Background(), "listmonk", "a")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = f.Run(context.Background(), "listmonk", "b")
	assert.EqualError(t, err, "boom")

	_, err = f.Run(context.Background(), "postiz")
	assert.Error(t, err)
	assert.Len(t, f.Calls, 3)
	assert.Equal(t, []string{"b"}, f.Calls[1].Args)
}

// Package runner executes the external binaries the pipeline delegates to
// (ffmpeg, listmonk, postiz) and turns failures into CommandError values.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/antoniolg/agent-kit/internal/utils"
)

// execCommand allows us to mock exec.CommandContext in tests
var execCommand = exec.CommandContext

// Runner runs an external command and returns its trimmed stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// CommandError is returned when a command exits non-zero or cannot start.
// It carries the full command line and whatever the tool wrote to stderr.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	} else if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Exec is the Runner backed by os/exec
type Exec struct{}

// New returns the default process runner
func New() Runner {
	return &Exec{}
}

// Run executes name with args, waiting for it to exit
func (r *Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	line := FormatCommand(name, args...)
	utils.LogVerbose("$ %s", line)

	cmd := execCommand(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Command: line,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	out := strings.TrimSpace(stdout.String())
	utils.LogDebug("%s output: %s", name, out)
	return out, nil
}

// FormatCommand renders a command line for logs and errors, quoting
// arguments that contain whitespace or quotes.
func FormatCommand(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			arg = strconv.Quote(arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

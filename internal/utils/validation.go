package utils

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExecLookPath allows us to mock exec.LookPath in tests
var ExecLookPath = exec.LookPath

// ValidationError represents a precondition failure with context
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RequireValue fails when a required parameter is empty
func RequireValue(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
		}
	}
	return nil
}

// RequireFile fails when a required file is missing or is a directory
func RequireFile(field, path string) error {
	if err := RequireValue(field, path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("file not found: %s", path),
			Err:     err,
		}
	}
	if info.IsDir() {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("expected a file, got a directory: %s", path),
		}
	}
	return nil
}

// ValidateRequiredDependency checks if a required command is available
func ValidateRequiredDependency(cmd string) error {
	if _, err := ExecLookPath(cmd); err != nil {
		return &ValidationError{
			Field:   cmd,
			Message: fmt.Sprintf("%s not found in PATH", cmd),
			Err:     err,
		}
	}
	return nil
}

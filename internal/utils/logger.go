package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LogLevel represents the level of logging verbosity
type LogLevel int

const (
	// LevelQuiet suppresses all output except errors and warnings
	LevelQuiet LogLevel = iota
	// LevelNormal shows the progress of each pipeline stage
	LevelNormal
	// LevelVerbose shows the external commands being run
	LevelVerbose
	// LevelDebug shows all debugging information
	LevelDebug
)

var (
	// CurrentLogLevel is the global log level setting
	CurrentLogLevel LogLevel = LevelNormal

	// Stdout receives informational output
	Stdout io.Writer = os.Stdout
	// Stderr receives errors and warnings
	Stderr io.Writer = os.Stderr
)

// SetLogLevel sets the global logging level
func SetLogLevel(level LogLevel) {
	CurrentLogLevel = level
}

// SetOutput redirects log output, mostly for tests. It returns a func that
// restores the previous writers.
func SetOutput(stdout, stderr io.Writer) func() {
	prevOut, prevErr := Stdout, Stderr
	Stdout, Stderr = stdout, stderr
	return func() {
		Stdout, Stderr = prevOut, prevErr
	}
}

// LogLevelFromString converts a string level name to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "quiet", "q":
		return LevelQuiet
	case "normal", "n":
		return LevelNormal
	case "verbose", "v":
		return LevelVerbose
	case "debug", "d":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// LogError logs an error message (always shown)
func LogError(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "%s\n", Error(fmt.Sprintf(format, args...)))
}

// LogWarning logs a warning to stderr (always shown)
func LogWarning(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "%s\n", Warning("Warning: "+fmt.Sprintf(format, args...)))
}

// LogInfo logs an informational message at Normal+ level
func LogInfo(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		fmt.Fprintf(Stdout, "%s\n", Info(fmt.Sprintf(format, args...)))
	}
}

// LogSuccess logs a success message at Normal+ level
func LogSuccess(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		fmt.Fprintf(Stdout, "%s\n", Success(fmt.Sprintf(format, args...)))
	}
}

// LogVerbose logs a message at Verbose+ level
func LogVerbose(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelVerbose {
		fmt.Fprintf(Stdout, "\t%s\n", Info(fmt.Sprintf(format, args...)))
	}
}

// LogDebug logs a debug message at Debug level
func LogDebug(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelDebug {
		fmt.Fprintf(Stdout, "\t%s\n", Debug(fmt.Sprintf(format, args...)))
	}
}

// Println writes plain, uncolored output that other tools may parse
// (an output path, an identifier). Shown at every level.
func Println(text string) {
	fmt.Fprintln(Stdout, text)
}

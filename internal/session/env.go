package session

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigFileName holds template definitions and defaults.
	ConfigFileName = "config.toml"

	// HistoryFileName is the session history log, newest first.
	HistoryFileName = "sessions.json"

	// TrackerFileName is the single-slot detached monitor PID marker.
	TrackerFileName = "current_session.pid"
)

// Environment carries the state directory and every derived path. All
// components take it explicitly; nothing in this package reads global
// path variables. Two cooperating processes (the CLI and a detached
// monitor) construct equivalent Environments independently and meet on
// the same files.
type Environment struct {
	// Dir is the base state directory, normally ~/.dayrun.
	Dir string
}

// NewEnvironment resolves the state directory: $DAYRUN_DIR when set
// (used by tests), otherwise ~/.dayrun.
func NewEnvironment() (*Environment, error) {
	if dir := os.Getenv("DAYRUN_DIR"); dir != "" {
		return &Environment{Dir: dir}, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &Environment{Dir: filepath.Join(homeDir, ".dayrun")}, nil
}

// EnsureDir creates the state directory if it doesn't exist.
func (e *Environment) EnsureDir() error {
	if err := os.MkdirAll(e.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// ConfigPath returns the template/defaults config file path.
func (e *Environment) ConfigPath() string {
	return filepath.Join(e.Dir, ConfigFileName)
}

// HistoryPath returns the session history file path.
func (e *Environment) HistoryPath() string {
	return filepath.Join(e.Dir, HistoryFileName)
}

// TrackerPath returns the detached monitor PID marker path.
func (e *Environment) TrackerPath() string {
	return filepath.Join(e.Dir, TrackerFileName)
}

// PendingPath returns the handoff file path for a session starting at
// the given Unix timestamp. One file per in-flight detach.
func (e *Environment) PendingPath(startTS int64) string {
	return filepath.Join(e.Dir, fmt.Sprintf("pending_session_%d.json", startTS))
}

// LogDir returns the directory for debug logs (the state directory).
func (e *Environment) LogDir() string {
	return e.Dir
}

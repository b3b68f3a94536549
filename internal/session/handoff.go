package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dayrun/dayrun/internal/logging"
)

var handoffLog = logging.ForComponent(logging.CompSession)

// The handoff file is a single-producer/single-consumer contract, not a
// queue: the CLI writes it once immediately before spawning the monitor,
// the monitor reads it once, and the monitor deletes it on completion.

// WriteHandoff serializes the record into the pending file keyed on its
// start timestamp and returns the path. A write failure here aborts the
// detach (the caller surfaces it), unlike the best-effort stores.
func WriteHandoff(env *Environment, rec Record) (string, error) {
	path := env.PendingPath(rec.StartTS)
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write handoff file: %w", err)
	}
	return path, nil
}

// ReadHandoff consumes a handoff file. A missing or unparsable file
// degrades to an empty record: the monitor still finishes and cleans up
// rather than crashing over a lost handoff.
func ReadHandoff(path string) (Record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		handoffLog.Warn("handoff_missing", slog.String("path", path), slog.String("error", err.Error()))
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		handoffLog.Warn("handoff_unparsable", slog.String("path", path), slog.String("error", err.Error()))
		return Record{}, false
	}
	return rec, true
}

// RemoveHandoff deletes a handoff file, treating already-gone as success.
func RemoveHandoff(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		handoffLog.Warn("handoff_remove_failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

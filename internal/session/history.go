package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dayrun/dayrun/internal/logging"
)

var storeLog = logging.ForComponent(logging.CompStore)

// HistoryStore is the append-only session log, persisted as a JSON array
// in the environment's history file, newest entry first. There is no
// locking: the design assumes at most one active session, so at most one
// writer (the CLI or the detached monitor) touches the file at a time.
type HistoryStore struct {
	env *Environment
}

// NewHistoryStore binds a store to the environment's history file.
func NewHistoryStore(env *Environment) *HistoryStore {
	return &HistoryStore{env: env}
}

// List returns all records, newest first. A missing or unreadable file
// is an empty history, never an error: reads must not break a session
// over a corrupt log.
func (s *HistoryStore) List() []Record {
	data, err := os.ReadFile(s.env.HistoryPath())
	if err != nil {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		storeLog.Warn("history_unreadable", slog.String("error", err.Error()))
		return nil
	}
	return records
}

// Last returns up to n most recent records.
func (s *HistoryStore) Last(n int) []Record {
	records := s.List()
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		records = records[:n]
	}
	return records
}

// Append prepends a record to the history. Write failures are swallowed
// after a debug log: losing one history line must never abort a running
// session.
func (s *HistoryStore) Append(rec Record) {
	records := append([]Record{rec}, s.List()...)
	if err := s.save(records); err != nil {
		storeLog.Warn("history_append_failed", slog.String("error", err.Error()))
	}
}

// save writes the full record list atomically: temp file, fsync, rename.
// A crashed writer leaves the previous history intact.
func (s *HistoryStore) save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	path := s.env.HistoryPath()
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := syncFile(tmpPath); err != nil {
		storeLog.Warn("history_fsync_failed", slog.String("error", err.Error()))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

// syncFile fsyncs a path so the rename that follows lands on durable data.
func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

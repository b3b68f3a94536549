package session

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/dayrun/dayrun/internal/logging"
)

var trackerLog = logging.ForComponent(logging.CompTracker)

// TrackerStatus is the liveness verdict for the tracked monitor.
type TrackerStatus int

const (
	// TrackerNoSession means no marker exists.
	TrackerNoSession TrackerStatus = iota
	// TrackerRunning means the marker's process is alive.
	TrackerRunning
	// TrackerStale means the marker pointed at a dead process. Status
	// reports it once and clears the marker (self-heal).
	TrackerStale
)

// Tracker is the single-slot record of the currently active detached
// monitor, persisted as one PID in the marker file. Only one monitor can
// be tracked at a time; a new detach overwrites the slot.
type Tracker struct {
	path string
}

// NewTracker binds a tracker to the environment's marker file.
func NewTracker(env *Environment) *Tracker {
	return &Tracker{path: env.TrackerPath()}
}

// Mark persists pid as the active monitor. Write failures are swallowed
// after a debug log; a missing marker degrades status reporting, it must
// not abort the session being started.
func (t *Tracker) Mark(pid int) {
	if err := os.WriteFile(t.path, []byte(strconv.Itoa(pid)), 0600); err != nil {
		trackerLog.Warn("marker_write_failed", slog.Int("pid", pid), slog.String("error", err.Error()))
	}
}

// Current returns the tracked pid, or false when no valid marker exists.
func (t *Tracker) Current() (int, bool) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// Clear removes the marker. Already-gone counts as cleared.
func (t *Tracker) Clear() {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		trackerLog.Warn("marker_clear_failed", slog.String("error", err.Error()))
	}
}

// Status probes the tracked monitor. A marker pointing at a dead process
// is reported as stale exactly once: the marker is cleared before
// returning so the next call reports no session.
func (t *Tracker) Status() (TrackerStatus, int) {
	pid, ok := t.Current()
	if !ok {
		return TrackerNoSession, 0
	}
	if processAlive(pid) {
		return TrackerRunning, pid
	}
	t.Clear()
	return TrackerStale, pid
}

// Stop sends SIGTERM to the tracked monitor and always clears the
// marker, whether or not signal delivery succeeded: a stale marker must
// never survive a stop attempt. Returns false when no marker exists.
func (t *Tracker) Stop() (int, bool, error) {
	pid, ok := t.Current()
	if !ok {
		return 0, false, nil
	}
	defer t.Clear()

	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, true, err
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return pid, true, err
	}
	return pid, true, nil
}

// processAlive probes a pid with signal 0. Permission denied still means
// the process exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

package session

import (
	"os"
	"time"

	"github.com/dayrun/dayrun/internal/logging"
)

var monitorLog = logging.ForComponent(logging.CompMonitor)

// Monitor is the background half of a detached session. The CLI spawns
// it as a hidden subcommand with the duration and the handoff file;
// it sleeps out the session and then performs the finishing effects
// the foreground countdown would have performed.
type Monitor struct {
	Runner  *Runner
	Tracker *Tracker
}

// Run reads the handoff, marks this process as the active session,
// sleeps for the full duration, and finishes the session. A missing or
// unreadable handoff still finishes: the user gets their notification
// and an end-stamped record rather than a silently vanished session.
//
// There is deliberately no signal handling here. A killed monitor
// leaves its marker behind, and the next status or stop call clears
// the stale entry.
func (m *Monitor) Run(seconds int, entryPath string) {
	rec, ok := ReadHandoff(entryPath)
	if !ok {
		monitorLog.Warn("handoff missing or unreadable, finishing with an empty record", "path", entryPath)
	}
	plan := RecoverPlan(rec)

	m.Tracker.Mark(os.Getpid())
	defer func() {
		RemoveHandoff(entryPath)
		m.Tracker.Clear()
	}()

	monitorLog.Debug("monitor sleeping", "seconds", seconds, "entry", entryPath)
	time.Sleep(time.Duration(seconds) * tickUnit)

	m.Runner.Finish(&plan, rec.DND, "Detached session finished")
}

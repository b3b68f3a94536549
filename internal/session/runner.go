package session

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/dayrun/dayrun/internal/logging"
)

var runnerLog = logging.ForComponent(logging.CompRunner)

// Notifier delivers a desktop notification. Implementations are
// best-effort and never report failure.
type Notifier interface {
	Notify(title, message string)
}

// DNDSetter toggles the desktop's Do Not Disturb mode. The return value
// says whether an attempt could be made, not whether the desktop
// actually honored it.
type DNDSetter interface {
	SetDoNotDisturb(enable bool) bool
}

// Opener launches an application, file, or URL.
type Opener interface {
	Open(target string) bool
}

// Multiplexer creates a terminal multiplexer session laid out from the
// plan's panes. finalName is the name actually used (an existing
// session of the same name gets a numeric suffix); created is false
// when the runtime is missing or creation failed.
type Multiplexer interface {
	CreateSession(name string, panes []Pane) (finalName string, created bool)
}

// Runner executes a session's side effects. The same Runner drives both
// the foreground countdown and the detached monitor, so the begin and
// finish sequences stay identical between the two paths.
type Runner struct {
	Notifier Notifier
	DND      DNDSetter
	Opener   Opener
	Mux      Multiplexer
	History  *HistoryStore

	// Out receives user-facing progress lines; defaults to stdout.
	Out io.Writer
}

// BeginResult reports what Begin actually started.
type BeginResult struct {
	// StartedDND records that DND was requested, whether or not the
	// desktop accepted it; Finish keys the restore on the request.
	StartedDND     bool
	TmuxCreated    bool
	TmuxName       string
	BackgroundPIDs []int
}

// Begin performs the start-of-session effects in order: DND, apps,
// panes or background commands, music, start notification. Every step
// is best-effort; a failure is reported and the sequence continues.
func (r *Runner) Begin(plan *Plan) BeginResult {
	runnerLog.Debug("session begin",
		"duration", plan.DurationSeconds,
		"dnd", plan.DND,
		"apps", len(plan.Apps),
		"cmds", len(plan.Cmds),
		"tmux", plan.UseTmux)

	res := BeginResult{TmuxName: plan.TmuxSession}

	if plan.DND {
		if !r.DND.SetDoNotDisturb(true) {
			r.printf("Could not enable Do Not Disturb automatically on your system. Please enable it manually if desired.")
		}
		res.StartedDND = true
	}

	for _, item := range plan.Apps {
		if !r.Opener.Open(item) {
			r.printf("Could not open '%s' automatically. (Best-effort)", item)
		}
	}

	if plan.UseTmux && len(plan.Panes) > 0 {
		name, created := r.Mux.CreateSession(plan.TmuxSession, plan.Panes)
		if created {
			res.TmuxCreated = true
			res.TmuxName = name
			r.printf("Created tmux session '%s'. Attach with: tmux attach -t %s", name, name)
		} else {
			r.printf("tmux requested but failed to create session. Falling back to background commands.")
			res.BackgroundPIDs = r.startBackground(plan.Cmds)
		}
	} else {
		// When the panes were created the plan's commands already live
		// in tmux; only run them here on the non-tmux path.
		res.BackgroundPIDs = r.startBackground(plan.Cmds)
	}

	if plan.Music != "" {
		r.Opener.Open(plan.Music)
	}

	if plan.Notify {
		r.Notifier.Notify("DayRun", "Session started: "+HumanDuration(plan.DurationSeconds))
	}
	return res
}

// Finish performs the end-of-session effects: end notification, DND
// restore, end timestamp, history append. The foreground loop and the
// detached monitor are mutually exclusive per session, so Finish runs
// at most once for a given plan.
func (r *Runner) Finish(plan *Plan, startedDND bool, message string) Record {
	if plan.Notify {
		r.Notifier.Notify("DayRun", message)
	}
	if startedDND {
		r.DND.SetDoNotDisturb(false)
	}
	rec := plan.Record.Finished(time.Now())
	if plan.Log {
		r.History.Append(rec)
	}
	runnerLog.Debug("session finish", "start_ts", rec.StartTS, "end_ts", rec.EndTS, "logged", plan.Log)
	return rec
}

// RunCountdown blocks until the session elapses, printing the remaining
// time every ten seconds while more than a minute is left and every
// second inside the final minute. An interrupt abandons the session:
// DND is restored but no notification is sent and nothing is logged.
// Returns false when interrupted.
func (r *Runner) RunCountdown(seconds int, startedDND bool, interrupt <-chan os.Signal) bool {
	remaining := seconds
	for remaining > 0 {
		interval := 1
		if remaining > 60 {
			interval = 10
		}
		if remaining%interval == 0 {
			r.printf("%s", countdownLine(remaining))
		}

		timer := time.NewTimer(time.Duration(interval) * tickUnit)
		select {
		case <-timer.C:
		case <-interrupt:
			timer.Stop()
			r.printf("Session interrupted by user.")
			if startedDND {
				r.DND.SetDoNotDisturb(false)
			}
			runnerLog.Debug("countdown interrupted", "remaining", remaining)
			return false
		}
		remaining -= interval
	}
	return true
}

// tickUnit is a second outside of tests.
var tickUnit = time.Second

func countdownLine(remaining int) string {
	mins := remaining / 60
	secs := remaining % 60
	if mins > 0 {
		return fmt.Sprintf("Time left: %dm %ds", mins, secs)
	}
	return fmt.Sprintf("Time left: %ds", secs)
}

func (r *Runner) startBackground(cmds []string) []int {
	var pids []int
	for _, c := range cmds {
		cmd := exec.Command("sh", "-c", c)
		if err := cmd.Start(); err != nil {
			runnerLog.Warn("failed to start background command", "cmd", c, "error", err)
			continue
		}
		pids = append(pids, cmd.Process.Pid)
		// Reap on exit so long sessions do not pile up zombies.
		go func() { _ = cmd.Wait() }()
	}
	return pids
}

func (r *Runner) printf(format string, args ...any) {
	w := r.Out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\n", args...)
}

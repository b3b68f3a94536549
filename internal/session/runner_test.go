package session

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

type fakeCaps struct {
	calls      []string
	dndOK      bool
	openFail   map[string]bool
	muxCreated bool
	muxRename  string
	muxPanes   []Pane
}

func newFakeCaps() *fakeCaps {
	return &fakeCaps{dndOK: true, muxCreated: true, openFail: map[string]bool{}}
}

func (f *fakeCaps) Notify(title, message string) {
	f.calls = append(f.calls, "notify:"+title+"|"+message)
}

func (f *fakeCaps) SetDoNotDisturb(enable bool) bool {
	f.calls = append(f.calls, fmt.Sprintf("dnd:%v", enable))
	return f.dndOK
}

func (f *fakeCaps) Open(target string) bool {
	f.calls = append(f.calls, "open:"+target)
	return !f.openFail[target]
}

func (f *fakeCaps) CreateSession(name string, panes []Pane) (string, bool) {
	f.calls = append(f.calls, "mux:"+name)
	f.muxPanes = panes
	if !f.muxCreated {
		return "", false
	}
	if f.muxRename != "" {
		return f.muxRename, true
	}
	return name, true
}

func newTestRunner(t *testing.T) (*Runner, *fakeCaps, *bytes.Buffer) {
	t.Helper()
	caps := newFakeCaps()
	out := &bytes.Buffer{}
	r := &Runner{
		Notifier: caps,
		DND:      caps,
		Opener:   caps,
		Mux:      caps,
		History:  NewHistoryStore(testEnv(t)),
		Out:      out,
	}
	return r, caps, out
}

func TestBeginOrder(t *testing.T) {
	r, caps, _ := newTestRunner(t)
	plan := &Plan{
		Record: Record{
			DurationSeconds: 1800,
			DND:             true,
			Apps:            []string{"slack", "calendar"},
		},
		Notify: true,
		Music:  "spotify:playlist",
	}

	res := r.Begin(plan)

	want := []string{
		"dnd:true",
		"open:slack",
		"open:calendar",
		"open:spotify:playlist",
		"notify:DayRun|Session started: " + HumanDuration(1800),
	}
	if len(caps.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", caps.calls, want)
	}
	for i := range want {
		if caps.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, caps.calls[i], want[i])
		}
	}
	if !res.StartedDND {
		t.Error("StartedDND should reflect the request")
	}
}

func TestBeginDNDFailureContinues(t *testing.T) {
	r, caps, out := newTestRunner(t)
	caps.dndOK = false
	plan := &Plan{
		Record: Record{DurationSeconds: 60, DND: true, Apps: []string{"slack"}},
		Notify: true,
	}

	res := r.Begin(plan)

	if !strings.Contains(out.String(), "Could not enable Do Not Disturb") {
		t.Errorf("missing DND warning in output: %q", out.String())
	}
	if !res.StartedDND {
		t.Error("StartedDND stays true even when the attempt failed")
	}
	// Later steps still ran.
	if caps.calls[len(caps.calls)-1] != "notify:DayRun|Session started: "+HumanDuration(60) {
		t.Errorf("begin did not continue past the DND failure: %v", caps.calls)
	}
}

func TestBeginOpenFailureWarns(t *testing.T) {
	r, caps, out := newTestRunner(t)
	caps.openFail["ghost-app"] = true
	plan := &Plan{
		Record: Record{DurationSeconds: 60, Apps: []string{"ghost-app", "slack"}},
	}

	r.Begin(plan)

	if !strings.Contains(out.String(), "Could not open 'ghost-app' automatically. (Best-effort)") {
		t.Errorf("missing open warning in output: %q", out.String())
	}
	// The second app was still attempted.
	found := false
	for _, c := range caps.calls {
		if c == "open:slack" {
			found = true
		}
	}
	if !found {
		t.Error("open failure should not stop the remaining apps")
	}
}

func TestBeginTmuxSkipsCommands(t *testing.T) {
	r, caps, out := newTestRunner(t)
	caps.muxRename = "focus_1"
	plan := &Plan{
		Record:  Record{DurationSeconds: 60, Cmds: []string{"true"}, TmuxSession: "focus"},
		UseTmux: true,
		Panes:   []Pane{{Cwd: "~", Cmd: "htop"}},
	}

	res := r.Begin(plan)

	if !res.TmuxCreated {
		t.Fatal("expected tmux session to be created")
	}
	if res.TmuxName != "focus_1" {
		t.Errorf("TmuxName = %q, want the collision-renamed focus_1", res.TmuxName)
	}
	if !strings.Contains(out.String(), "Attach with: tmux attach -t focus_1") {
		t.Errorf("attach hint should use the final name: %q", out.String())
	}
	if len(res.BackgroundPIDs) != 0 {
		t.Error("commands must not run when the tmux session was created")
	}
	if len(caps.muxPanes) != 1 || caps.muxPanes[0].Cmd != "htop" {
		t.Errorf("panes not passed through: %v", caps.muxPanes)
	}
}

func TestBeginTmuxFallbackRunsCommands(t *testing.T) {
	r, caps, out := newTestRunner(t)
	caps.muxCreated = false
	plan := &Plan{
		Record:  Record{DurationSeconds: 60, Cmds: []string{"true"}, TmuxSession: "focus"},
		UseTmux: true,
		Panes:   []Pane{{Cwd: "~"}},
	}

	res := r.Begin(plan)

	if !strings.Contains(out.String(), "Falling back to background commands.") {
		t.Errorf("missing fallback notice: %q", out.String())
	}
	if len(res.BackgroundPIDs) != 1 {
		t.Errorf("fallback should start the plan's commands, got pids %v", res.BackgroundPIDs)
	}
}

func TestBeginBackgroundCommands(t *testing.T) {
	r, _, _ := newTestRunner(t)
	plan := &Plan{
		Record: Record{DurationSeconds: 60, Cmds: []string{"true", "true"}},
	}

	res := r.Begin(plan)

	if len(res.BackgroundPIDs) != 2 {
		t.Errorf("BackgroundPIDs = %v, want two entries", res.BackgroundPIDs)
	}
	for _, pid := range res.BackgroundPIDs {
		if pid <= 0 {
			t.Errorf("got non-positive pid %d", pid)
		}
	}
}

func TestBeginNotifyDisabled(t *testing.T) {
	r, caps, _ := newTestRunner(t)
	plan := &Plan{Record: Record{DurationSeconds: 60}}

	r.Begin(plan)

	for _, c := range caps.calls {
		if strings.HasPrefix(c, "notify:") {
			t.Errorf("notification sent despite Notify=false: %v", caps.calls)
		}
	}
}

func TestFinish(t *testing.T) {
	r, caps, _ := newTestRunner(t)
	start := time.Now().Unix() - 60
	plan := &Plan{
		Record: Record{DurationSeconds: 60, StartTS: start, DND: true},
		Notify: true,
		Log:    true,
	}

	rec := r.Finish(plan, true, "Session finished")

	want := []string{"notify:DayRun|Session finished", "dnd:false"}
	if len(caps.calls) != 2 || caps.calls[0] != want[0] || caps.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", caps.calls, want)
	}
	if rec.EndTS < rec.StartTS {
		t.Errorf("EndTS %d before StartTS %d", rec.EndTS, rec.StartTS)
	}

	records := r.History.List()
	if len(records) != 1 || records[0].StartTS != start {
		t.Errorf("history = %v, want the finished record", records)
	}
}

func TestFinishNoLogNoDND(t *testing.T) {
	r, caps, _ := newTestRunner(t)
	plan := &Plan{
		Record: Record{DurationSeconds: 60, StartTS: time.Now().Unix()},
		Notify: false,
		Log:    false,
	}

	r.Finish(plan, false, "Session finished")

	if len(caps.calls) != 0 {
		t.Errorf("no capability calls expected, got %v", caps.calls)
	}
	if got := r.History.List(); len(got) != 0 {
		t.Errorf("history should stay empty, got %v", got)
	}
}

func TestRunCountdownCompletes(t *testing.T) {
	old := tickUnit
	tickUnit = time.Millisecond
	defer func() { tickUnit = old }()

	r, _, out := newTestRunner(t)
	done := r.RunCountdown(80, false, make(chan os.Signal))

	if !done {
		t.Fatal("countdown should complete")
	}
	text := out.String()
	if !strings.Contains(text, "Time left: 1m 20s") {
		t.Errorf("missing ten-second line: %q", text)
	}
	if !strings.Contains(text, "Time left: 1s") {
		t.Errorf("missing final-minute line: %q", text)
	}
}

func TestRunCountdownInterrupt(t *testing.T) {
	old := tickUnit
	tickUnit = time.Millisecond
	defer func() { tickUnit = old }()

	r, caps, out := newTestRunner(t)
	interrupt := make(chan os.Signal, 1)
	interrupt <- os.Interrupt

	done := r.RunCountdown(120, true, interrupt)

	if done {
		t.Fatal("countdown should report interruption")
	}
	if !strings.Contains(out.String(), "Session interrupted by user.") {
		t.Errorf("missing interrupt message: %q", out.String())
	}
	// DND is restored, but nothing is notified or logged.
	foundRestore := false
	for _, c := range caps.calls {
		if c == "dnd:false" {
			foundRestore = true
		}
		if strings.HasPrefix(c, "notify:") {
			t.Errorf("interrupted session must not notify: %v", caps.calls)
		}
	}
	if !foundRestore {
		t.Errorf("interrupted session must restore DND: %v", caps.calls)
	}
	if got := r.History.List(); len(got) != 0 {
		t.Errorf("interrupted session must not be logged, got %v", got)
	}
}

func TestCountdownLine(t *testing.T) {
	tests := []struct {
		remaining int
		want      string
	}{
		{90, "Time left: 1m 30s"},
		{60, "Time left: 1m 0s"},
		{59, "Time left: 59s"},
		{1, "Time left: 1s"},
		{3605, "Time left: 60m 5s"},
	}
	for _, tt := range tests {
		if got := countdownLine(tt.remaining); got != tt.want {
			t.Errorf("countdownLine(%d) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}

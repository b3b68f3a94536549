package session

import "time"

// Record is the persisted description of one session. This is what the
// history file stores and what the handoff file carries to a detached
// monitor. Once appended to history a record is never rewritten except
// for the one-time addition of end_ts (and detached_pid for detached
// runs, stamped before the start-stub append).
type Record struct {
	// Template is the template name the session was started from, if any.
	Template string `json:"template,omitempty"`

	// DurationSeconds is fixed at session start.
	DurationSeconds int `json:"duration_seconds"`

	// StartTS and EndTS are Unix timestamps. EndTS is absent until the
	// session finishes, naturally or by explicit stop.
	StartTS int64 `json:"start_ts"`
	EndTS   int64 `json:"end_ts,omitempty"`

	// DND records whether do-not-disturb was requested.
	DND bool `json:"dnd"`

	// Apps and Cmds are the open targets and shell commands resolved at
	// start, in execution order.
	Apps []string `json:"apps"`
	Cmds []string `json:"cmds"`

	// TmuxSession is the multiplexer session name, present only when a
	// multiplexer was requested.
	TmuxSession string `json:"tmux_session,omitempty"`

	// DetachedPID is the monitor process ID, present only for detached runs.
	DetachedPID int `json:"detached_pid,omitempty"`
}

// Pane describes one multiplexer pane: a command in a working directory.
type Pane struct {
	Cwd string `toml:"cwd"`
	Cmd string `toml:"cmd"`
}

// Plan is a fully resolved session: the persistable Record plus runtime
// flags that never cross the process boundary. The handoff file carries
// only the Record, so a plan recovered by the monitor always has Notify
// and Log enabled.
type Plan struct {
	Record

	// Notify controls the start and end notifications.
	Notify bool

	// Log controls the history append on finish.
	Log bool

	// UseTmux requests multiplexer panes; Panes come from the template.
	UseTmux bool
	Panes   []Pane

	// Music is an extra open target fired after commands start.
	Music string
}

// RecoverPlan rebuilds a plan from a deserialized handoff record. The
// runtime flags aren't serialized, so recovered sessions notify and log.
func RecoverPlan(rec Record) Plan {
	return Plan{Record: rec, Notify: true, Log: true}
}

// Finished returns a copy of the record stamped with the given end time.
func (r Record) Finished(end time.Time) Record {
	r.EndTS = end.Unix()
	return r
}

package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// TemplateNotFoundError is returned when start names a template that is
// not in the config. Suggestion holds the closest existing name, if any.
type TemplateNotFoundError struct {
	Name       string
	Suggestion string
}

func (e *TemplateNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("template '%s' not found (did you mean '%s'?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("template '%s' not found", e.Name)
}

// StartOptions carries the start command's flags into plan resolution.
// Pointer fields are tristate: nil means the flag was not given.
type StartOptions struct {
	Template    string
	Duration    string
	DND         *bool
	Apps        string
	Cmds        []string
	UseTmux     bool
	TmuxSession string
	Notify      *bool
	Log         *bool
}

// ResolvePlan merges flags, the selected template, and config defaults
// into a concrete Plan. Precedence is flag, then template, then config.
// Resolution has no side effects, so a bad template or duration aborts
// the session before anything is opened or toggled.
func ResolvePlan(cfg *Config, opts StartOptions, now time.Time) (*Plan, error) {
	var tpl Template
	if opts.Template != "" {
		found, ok := cfg.Templates[opts.Template]
		if !ok {
			return nil, &TemplateNotFoundError{
				Name:       opts.Template,
				Suggestion: closestTemplate(cfg, opts.Template),
			}
		}
		tpl = found
	}

	durStr := opts.Duration
	if durStr == "" {
		durStr = tpl.Duration
	}
	if durStr == "" {
		durStr = cfg.DefaultDuration
	}
	seconds, err := ParseDuration(durStr)
	if err != nil {
		return nil, err
	}

	var dnd bool
	switch {
	case opts.DND != nil:
		dnd = *opts.DND
	default:
		if val, set := tpl.GetDND(); set {
			dnd = val
		} else {
			dnd = cfg.GetDNDOnStart()
		}
	}

	notify := tpl.GetNotifications()
	if opts.Notify != nil {
		notify = *opts.Notify
	}

	logSession := true
	if opts.Log != nil {
		logSession = *opts.Log
	}

	// Template apps come first, then ad-hoc ones; for commands the flag
	// ones run first.
	apps := []string{}
	apps = append(apps, tpl.Apps...)
	apps = append(apps, splitList(opts.Apps)...)

	cmds := []string{}
	cmds = append(cmds, opts.Cmds...)
	cmds = append(cmds, tpl.Cmds...)

	name := opts.TmuxSession
	if name == "" {
		name = tpl.Tmux.SessionName
	}
	if name == "" {
		name = fmt.Sprintf("dayrun_%d", now.Unix())
	}

	rec := Record{
		Template:        opts.Template,
		DurationSeconds: seconds,
		StartTS:         now.Unix(),
		DND:             dnd,
		Apps:            apps,
		Cmds:            cmds,
	}
	// Recorded whenever tmux was requested, even if no session ends up
	// being created.
	if opts.UseTmux {
		rec.TmuxSession = name
	}

	plan := &Plan{
		Record:  rec,
		Notify:  notify,
		Log:     logSession,
		UseTmux: opts.UseTmux,
		Music:   tpl.Music,
	}
	if opts.UseTmux {
		plan.Panes = append([]Pane(nil), tpl.Tmux.Panes...)
	}
	return plan, nil
}

// closestTemplate fuzzy-matches the requested name against the config's
// template names and returns the best hit, or "" when nothing is close.
func closestTemplate(cfg *Config, name string) string {
	if len(cfg.Templates) == 0 {
		return ""
	}
	names := make([]string, 0, len(cfg.Templates))
	for n := range cfg.Templates {
		names = append(names, n)
	}
	sort.Strings(names)

	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

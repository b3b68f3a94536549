package session

import (
	"errors"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func TestResolvePlanDefaults(t *testing.T) {
	now := time.Unix(1700000000, 0)
	plan, err := ResolvePlan(DefaultConfig(), StartOptions{}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}

	if plan.DurationSeconds != 1500 {
		t.Errorf("DurationSeconds = %d, want 1500 (25m default)", plan.DurationSeconds)
	}
	if !plan.DND {
		t.Error("DND should default to dnd_on_start (true)")
	}
	if !plan.Notify || !plan.Log {
		t.Errorf("Notify/Log = %v/%v, want true/true", plan.Notify, plan.Log)
	}
	if plan.UseTmux || plan.TmuxSession != "" {
		t.Errorf("tmux should be off: UseTmux=%v TmuxSession=%q", plan.UseTmux, plan.TmuxSession)
	}
	if plan.StartTS != now.Unix() {
		t.Errorf("StartTS = %d, want %d", plan.StartTS, now.Unix())
	}
	if plan.Apps == nil || plan.Cmds == nil {
		t.Error("Apps and Cmds should be empty slices, not nil")
	}
}

func TestResolvePlanTemplate(t *testing.T) {
	now := time.Unix(1700000000, 0)
	plan, err := ResolvePlan(DefaultConfig(), StartOptions{Template: "deep-work"}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}

	if plan.Template != "deep-work" {
		t.Errorf("Template = %q, want deep-work", plan.Template)
	}
	if plan.DurationSeconds != 5400 {
		t.Errorf("DurationSeconds = %d, want 5400 (90m)", plan.DurationSeconds)
	}
	if !plan.DND {
		t.Error("deep-work template sets dnd")
	}
	if plan.TmuxSession != "" {
		t.Error("tmux session should not be recorded without --tmux")
	}

	withTmux, err := ResolvePlan(DefaultConfig(), StartOptions{Template: "deep-work", UseTmux: true}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if withTmux.TmuxSession != "dayrun_deep" {
		t.Errorf("TmuxSession = %q, want dayrun_deep", withTmux.TmuxSession)
	}
}

func TestResolvePlanFlagsBeatTemplate(t *testing.T) {
	now := time.Unix(1700000000, 0)
	opts := StartOptions{
		Template: "deep-work",
		Duration: "10m",
		DND:      boolPtr(false),
	}
	plan, err := ResolvePlan(DefaultConfig(), opts, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if plan.DurationSeconds != 600 {
		t.Errorf("DurationSeconds = %d, want 600", plan.DurationSeconds)
	}
	if plan.DND {
		t.Error("--no-dnd should override the template")
	}
}

func TestResolvePlanUnknownTemplate(t *testing.T) {
	now := time.Unix(1700000000, 0)

	_, err := ResolvePlan(DefaultConfig(), StartOptions{Template: "depwork"}, now)
	var notFound *TemplateNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TemplateNotFoundError, got %v", err)
	}
	if notFound.Name != "depwork" {
		t.Errorf("Name = %q, want depwork", notFound.Name)
	}
	if notFound.Suggestion != "deep-work" {
		t.Errorf("Suggestion = %q, want deep-work", notFound.Suggestion)
	}

	_, err = ResolvePlan(DefaultConfig(), StartOptions{Template: "zzz"}, now)
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TemplateNotFoundError, got %v", err)
	}
	if notFound.Suggestion != "" {
		t.Errorf("Suggestion = %q, want none for an unrelated name", notFound.Suggestion)
	}
}

func TestResolvePlanMergeOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Templates["mix"] = Template{
		Duration: "30m",
		Apps:     []string{"slack", "calendar"},
		Cmds:     []string{"make watch"},
	}
	opts := StartOptions{
		Template: "mix",
		Apps:     " editor , ,browser ",
		Cmds:     []string{"git fetch"},
	}

	plan, err := ResolvePlan(cfg, opts, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}

	wantApps := []string{"slack", "calendar", "editor", "browser"}
	if len(plan.Apps) != len(wantApps) {
		t.Fatalf("Apps = %v, want %v", plan.Apps, wantApps)
	}
	for i, app := range wantApps {
		if plan.Apps[i] != app {
			t.Errorf("Apps[%d] = %q, want %q", i, plan.Apps[i], app)
		}
	}

	// Flag commands run before template commands.
	if len(plan.Cmds) != 2 || plan.Cmds[0] != "git fetch" || plan.Cmds[1] != "make watch" {
		t.Errorf("Cmds = %v, want [git fetch, make watch]", plan.Cmds)
	}
}

func TestResolvePlanTmuxName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cfg := DefaultConfig()
	cfg.Templates["panes"] = Template{
		Duration: "30m",
		Tmux: TmuxTemplate{
			SessionName: "focus",
			Panes:       []Pane{{Cwd: "~", Cmd: "htop"}},
		},
	}

	tests := []struct {
		name string
		opts StartOptions
		want string
	}{
		{"flag wins", StartOptions{Template: "panes", UseTmux: true, TmuxSession: "mine"}, "mine"},
		{"template name", StartOptions{Template: "panes", UseTmux: true}, "focus"},
		{"generated", StartOptions{UseTmux: true}, "dayrun_1700000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ResolvePlan(cfg, tt.opts, now)
			if err != nil {
				t.Fatalf("ResolvePlan failed: %v", err)
			}
			if plan.TmuxSession != tt.want {
				t.Errorf("TmuxSession = %q, want %q", plan.TmuxSession, tt.want)
			}
		})
	}
}

func TestResolvePlanPanesOnlyWithTmux(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cfg := DefaultConfig()
	cfg.Templates["panes"] = Template{
		Duration: "30m",
		Tmux: TmuxTemplate{
			SessionName: "focus",
			Panes:       []Pane{{Cwd: "~/src", Cmd: "make watch"}},
		},
	}

	without, err := ResolvePlan(cfg, StartOptions{Template: "panes"}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if len(without.Panes) != 0 {
		t.Errorf("panes should be empty without --tmux, got %v", without.Panes)
	}

	with, err := ResolvePlan(cfg, StartOptions{Template: "panes", UseTmux: true}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if len(with.Panes) != 1 || with.Panes[0].Cmd != "make watch" {
		t.Fatalf("Panes = %v, want the template pane", with.Panes)
	}

	// The plan owns its pane slice; mutating it must not touch the config.
	with.Panes[0].Cmd = "changed"
	if cfg.Templates["panes"].Tmux.Panes[0].Cmd != "make watch" {
		t.Error("plan panes alias the template's slice")
	}
}

func TestResolvePlanInvalidDuration(t *testing.T) {
	_, err := ResolvePlan(DefaultConfig(), StartOptions{Duration: "abc"}, time.Unix(1700000000, 0))
	var invalid *InvalidDurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidDurationError, got %v", err)
	}
}

func TestResolvePlanNotifyChain(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cfg := DefaultConfig()
	cfg.Templates["quiet"] = Template{Duration: "30m", Notifications: boolPtr(false)}

	plan, err := ResolvePlan(cfg, StartOptions{Template: "quiet"}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if plan.Notify {
		t.Error("template notifications=false should disable notify")
	}

	forced, err := ResolvePlan(cfg, StartOptions{Template: "quiet", Notify: boolPtr(true)}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if !forced.Notify {
		t.Error("--notify should override the template")
	}

	noLog, err := ResolvePlan(cfg, StartOptions{Log: boolPtr(false)}, now)
	if err != nil {
		t.Fatalf("ResolvePlan failed: %v", err)
	}
	if noLog.Log {
		t.Error("--no-log should disable history logging")
	}
}

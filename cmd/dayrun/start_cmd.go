package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/dayrun/dayrun/internal/platform"
	"github.com/dayrun/dayrun/internal/session"
	"github.com/dayrun/dayrun/internal/ui"
)

func handleStart(args []string) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	template := fs.String("template", "", "Template name to use")
	templateShort := fs.String("t", "", "Template name (short)")
	duration := fs.String("duration", "", "Session duration, e.g. 25m, 1h")
	durationShort := fs.String("d", "", "Session duration (short)")
	dndOn := fs.Bool("dnd", false, "Enable Do Not Disturb for this session")
	dndOff := fs.Bool("no-dnd", false, "Disable Do Not Disturb for this session")
	apps := fs.String("apps", "", "Comma-separated apps or URLs to open")
	var cmds stringListFlag
	fs.Var(&cmds, "cmd", "Shell command to run in the background (repeatable)")
	useTmux := fs.Bool("tmux", false, "Create tmux panes from the template")
	tmuxSession := fs.String("tmux-session", "", "tmux session name (with --tmux)")
	notifyOn := fs.Bool("notify", false, "Send notifications at start and end (default)")
	notifyOff := fs.Bool("no-notify", false, "Suppress notifications")
	logOn := fs.Bool("log", false, "Log the session to history (default)")
	logOff := fs.Bool("no-log", false, "Do not log the session")
	detach := fs.Bool("detach", false, "Run the session in a background monitor")
	fullUI := fs.Bool("ui", false, "Show the full-screen countdown (TTY only)")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: dayrun start [options]")
		fmt.Println()
		fmt.Println("Start a focus session, from a template or ad hoc.")
		fmt.Println("Blocks with a countdown unless --detach is given.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  dayrun start -t deep-work")
		fmt.Println("  dayrun start -d 45m --apps slack,https://calendar.google.com")
		fmt.Println("  dayrun start --cmd 'make watch' --cmd 'npm run dev' --tmux")
		fmt.Println("  dayrun start -t deep-work --detach")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, false)

	dndOpt, ok := boolFlagPair(*dndOn, *dndOff)
	if !ok {
		out.Error("--dnd and --no-dnd are mutually exclusive", ErrCodeInvalidFlag)
		os.Exit(1)
	}
	notifyOpt, ok := boolFlagPair(*notifyOn, *notifyOff)
	if !ok {
		out.Error("--notify and --no-notify are mutually exclusive", ErrCodeInvalidFlag)
		os.Exit(1)
	}
	logOpt, ok := boolFlagPair(*logOn, *logOff)
	if !ok {
		out.Error("--log and --no-log are mutually exclusive", ErrCodeInvalidFlag)
		os.Exit(1)
	}

	env := mustEnv(out)
	cfg := loadConfig(session.NewConfigStore(env))

	opts := session.StartOptions{
		Template:    firstNonEmpty(*template, *templateShort),
		Duration:    firstNonEmpty(*duration, *durationShort),
		DND:         dndOpt,
		Apps:        *apps,
		Cmds:        cmds,
		UseTmux:     *useTmux,
		TmuxSession: *tmuxSession,
		Notify:      notifyOpt,
		Log:         logOpt,
	}

	plan, err := session.ResolvePlan(cfg, opts, time.Now())
	if err != nil {
		var notFound *session.TemplateNotFoundError
		var badDuration *session.InvalidDurationError
		switch {
		case errors.As(err, &notFound):
			msg := fmt.Sprintf("Template '%s' not found.", notFound.Name)
			if notFound.Suggestion != "" {
				msg += fmt.Sprintf(" Did you mean '%s'?", notFound.Suggestion)
			}
			out.Error(msg, ErrCodeNotFound)
		case errors.As(err, &badDuration):
			out.Error(fmt.Sprintf("Invalid duration: %v", err), ErrCodeInvalidDuration)
		default:
			out.Error(err.Error(), ErrCodeInvalidFlag)
		}
		os.Exit(1)
	}

	runner := newRunner(env)
	if *jsonOutput {
		// Keep stdout clean for the JSON result.
		runner.Out = os.Stderr
	}

	fmt.Fprintf(runner.Out, "Starting DayRun session: duration=%s, dnd=%v, detach=%v\n",
		session.HumanDuration(plan.DurationSeconds), plan.DND, *detach)

	begin := runner.Begin(plan)

	if *detach && startDetached(out, env, runner, plan, begin) {
		return
	}
	// A failed detach was reported above; the session is already live,
	// so it keeps running here in the foreground.

	runForeground(out, runner, plan, begin, *fullUI)
}

// startDetached hands the running session to a background monitor.
// Returns false when no monitor could be spawned.
func startDetached(out *CLIOutput, env *session.Environment, runner *session.Runner, plan *session.Plan, begin session.BeginResult) bool {
	if platform.Detect() == platform.PlatformWindows {
		fmt.Fprintln(os.Stderr, "Detached mode is not supported on Windows; running in the foreground.")
		return false
	}

	exe, err := os.Executable()
	if err != nil {
		out.Error(fmt.Sprintf("Failed to start detached monitor: %v", err), ErrCodeSpawnFailed)
		return false
	}

	entryPath, err := session.WriteHandoff(env, plan.Record)
	if err != nil {
		out.Error(fmt.Sprintf("Failed to start detached monitor: %v", err), ErrCodeSpawnFailed)
		return false
	}

	cmd := exec.Command(exe, "_monitor", strconv.Itoa(plan.DurationSeconds), entryPath)
	// New session, no controlling terminal: the monitor must survive
	// this shell closing. Stdio goes to /dev/null.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		out.Error(fmt.Sprintf("Failed to start detached monitor: %v", err), ErrCodeSpawnFailed)
		session.RemoveHandoff(entryPath)
		return false
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()

	session.NewTracker(env).Mark(pid)
	cliLog.Info("detached monitor spawned", "pid", pid, "entry", entryPath)

	if plan.Log {
		// Start stub so history shows the session before it finishes;
		// the monitor appends the completed record later.
		stub := plan.Record
		stub.DetachedPID = pid
		runner.History.Append(stub)
	}

	out.Success(fmt.Sprintf("Detached monitor started (pid %d).", pid), map[string]interface{}{
		"success":          true,
		"detached_pid":     pid,
		"start_ts":         plan.StartTS,
		"duration_seconds": plan.DurationSeconds,
		"tmux_session":     begin.TmuxName,
	})
	return true
}

func runForeground(out *CLIOutput, runner *session.Runner, plan *session.Plan, begin session.BeginResult, fullUI bool) {
	var completed bool
	switch {
	case fullUI && term.IsTerminal(int(os.Stdout.Fd())):
		done, err := ui.RunCountdown(plan.DurationSeconds, plan.Template)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Countdown UI failed (%v); using the plain countdown.\n", err)
			completed = runPlainCountdown(runner, plan, begin)
			break
		}
		completed = done
		if !done {
			// The UI swallows the keypress, so the interrupt effects
			// happen here instead of in the countdown loop.
			fmt.Fprintln(runner.Out, "Session interrupted by user.")
			if begin.StartedDND {
				runner.DND.SetDoNotDisturb(false)
			}
		}
	case fullUI:
		fmt.Fprintln(os.Stderr, "--ui needs a terminal; using the plain countdown.")
		completed = runPlainCountdown(runner, plan, begin)
	default:
		completed = runPlainCountdown(runner, plan, begin)
	}

	if !completed {
		return
	}

	rec := runner.Finish(plan, begin.StartedDND, "Session finished")
	out.Print("Session completed.\n", map[string]interface{}{
		"success": true,
		"record":  rec,
	})
}

func runPlainCountdown(runner *session.Runner, plan *session.Plan, begin session.BeginResult) bool {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	return runner.RunCountdown(plan.DurationSeconds, begin.StartedDND, sigCh)
}

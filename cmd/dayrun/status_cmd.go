package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dayrun/dayrun/internal/session"
)

func handleStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	wait := fs.Bool("wait", false, "Block until the detached session ends")
	jsonOutput := fs.Bool("json", false, "Output status as JSON")
	quiet := fs.Bool("quiet", false, "Suppress output; exit 0 if a session is running")

	fs.Usage = func() {
		fmt.Println("Usage: dayrun status [options]")
		fmt.Println()
		fmt.Println("Report whether a detached session monitor is running.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, *quiet)
	env := mustEnv(out)
	tracker := session.NewTracker(env)

	if *wait {
		waitForSession(out, env, tracker)
		return
	}

	status, pid := tracker.Status()
	switch status {
	case session.TrackerRunning:
		out.Print(fmt.Sprintf("Detached session monitor running (pid %d).\n", pid), map[string]interface{}{
			"running": true,
			"pid":     pid,
		})
	case session.TrackerStale:
		out.Print("No detached session running (stale PID file).\n", map[string]interface{}{
			"running": false,
			"stale":   true,
			"pid":     pid,
		})
		os.Exit(1)
	default:
		out.Print("No detached session found.\n", map[string]interface{}{
			"running": false,
		})
		os.Exit(1)
	}
}

// waitForSession blocks until the tracked monitor finishes or is
// stopped. Ctrl-C stops the wait, not the session.
func waitForSession(out *CLIOutput, env *session.Environment, tracker *session.Tracker) {
	status, pid := tracker.Status()
	if status != session.TrackerRunning {
		out.Print("No detached session found.\n", map[string]interface{}{
			"running": false,
		})
		return
	}

	out.Print(fmt.Sprintf("Waiting for detached session (pid %d) to finish...\n", pid), nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := session.WaitForClear(ctx, env, tracker); err != nil {
		out.Print("Stopped waiting; the session is still running.\n", map[string]interface{}{
			"running": true,
			"pid":     pid,
		})
		os.Exit(1)
	}

	out.Print("Detached session finished.\n", map[string]interface{}{
		"running": false,
		"waited":  true,
		"pid":     pid,
	})
}

func handleStop(args []string) {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output the result as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: dayrun stop [options]")
		fmt.Println()
		fmt.Println("Stop the detached session monitor and clear its marker.")
		fmt.Println("The marker is always cleared, even when the process is gone.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, false)
	env := mustEnv(out)

	pid, found, err := session.NewTracker(env).Stop()
	if !found {
		out.Print("No detached session found.\n", map[string]interface{}{
			"stopped": false,
			"found":   false,
		})
		return
	}
	if err != nil {
		// The marker is cleared regardless, so a dead process still
		// leaves the tracker clean.
		out.Print(fmt.Sprintf("Could not signal pid %d (%v); cleared the stale marker.\n", pid, err), map[string]interface{}{
			"stopped": false,
			"found":   true,
			"pid":     pid,
			"error":   err.Error(),
		})
		return
	}

	cliLog.Info("detached monitor stopped", "pid", pid)
	out.Success(fmt.Sprintf("Signaled detached session (pid %d) to stop.", pid), map[string]interface{}{
		"success": true,
		"stopped": true,
		"pid":     pid,
	})
}

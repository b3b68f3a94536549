package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dayrun/dayrun/internal/session"
)

// runMonitor is the hidden `_monitor <seconds> <entry-file>` entrypoint
// the CLI spawns for detached sessions. It runs with no controlling
// terminal and null stdio; everything user-visible happens through
// notifications and the history file.
func runMonitor(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: dayrun _monitor <seconds> <entry-file>")
		os.Exit(2)
	}

	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds < 0 {
		fmt.Fprintf(os.Stderr, "invalid monitor duration: %q\n", args[0])
		os.Exit(2)
	}
	entryPath := args[1]

	env, err := session.NewEnvironment()
	if err == nil {
		err = env.EnsureDir()
	}
	if err != nil {
		// Nothing sensible to do without a state directory; the stale
		// handoff file will be overwritten by the next detach.
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}

	m := &session.Monitor{
		Runner:  newRunner(env),
		Tracker: session.NewTracker(env),
	}
	m.Run(seconds, entryPath)
}

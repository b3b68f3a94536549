// Package tmux creates the detached tmux sessions that templates
// describe: one session, one pane per configured {cwd, cmd} entry,
// tiled layout.
package tmux

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dayrun/dayrun/internal/logging"
	"github.com/dayrun/dayrun/internal/session"
)

var tmuxLog = logging.ForComponent(logging.CompTmux)

// Client shells out to the tmux binary. It holds no state; every call
// asks the tmux server directly.
type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// Available reports whether a tmux binary is on PATH.
func (c *Client) Available() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// CreateSession creates a detached session for the given panes. When a
// session of the requested name already exists, numeric suffixes are
// tried until a free name is found; the name actually used is
// returned. An empty pane list still creates a bare session with a
// shell. Returns created=false when tmux is missing or the session
// could not be created.
func (c *Client) CreateSession(name string, panes []session.Pane) (string, bool) {
	if !c.Available() {
		return "", false
	}

	final := name
	for i := 1; c.hasSession(final); i++ {
		final = fmt.Sprintf("%s_%d", name, i)
	}

	if len(panes) == 0 {
		if err := exec.Command("tmux", "new-session", "-d", "-s", final).Run(); err != nil {
			tmuxLog.Warn("failed to create tmux session", "name", final, "error", err)
			return "", false
		}
		return final, true
	}

	first := panes[0]
	args := []string{"new-session", "-d", "-s", final, "-c", paneDir(first.Cwd)}
	if first.Cmd != "" {
		args = append(args, first.Cmd)
	}
	if out, err := exec.Command("tmux", args...).CombinedOutput(); err != nil {
		tmuxLog.Warn("failed to create tmux session",
			"name", final, "error", err, "output", strings.TrimSpace(string(out)))
		return "", false
	}

	// Remaining panes are splits; a failed split skips its command but
	// the session is still useful, so keep going.
	for _, p := range panes[1:] {
		if err := exec.Command("tmux", "split-window", "-t", final, "-c", paneDir(p.Cwd)).Run(); err != nil {
			tmuxLog.Warn("failed to split pane", "name", final, "error", err)
			continue
		}
		if p.Cmd != "" {
			_ = exec.Command("tmux", "send-keys", "-t", final, p.Cmd, "Enter").Run()
		}
	}
	_ = exec.Command("tmux", "select-layout", "-t", final, "tiled").Run()

	tmuxLog.Debug("tmux session created", "name", final, "panes", len(panes))
	return final, true
}

// KillSession tears a session down; used by tests and cleanup paths.
func (c *Client) KillSession(name string) error {
	return exec.Command("tmux", "kill-session", "-t", name).Run()
}

func (c *Client) hasSession(name string) bool {
	return exec.Command("tmux", "has-session", "-t", name).Run() == nil
}

// paneDir resolves a pane's configured cwd, expanding a leading tilde
// and defaulting to the home directory.
func paneDir(cwd string) string {
	home := os.Getenv("HOME")
	switch {
	case cwd == "" || cwd == "~":
		return home
	case strings.HasPrefix(cwd, "~/"):
		return filepath.Join(home, cwd[2:])
	default:
		return cwd
	}
}

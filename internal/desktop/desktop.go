// Package desktop provides best-effort access to the local desktop:
// notifications, Do Not Disturb, and opening apps, files, or URLs.
// Nothing here returns an error; callers only learn whether an attempt
// could be made, because a focus session must keep going when the
// desktop refuses to cooperate.
package desktop

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dayrun/dayrun/internal/logging"
	"github.com/dayrun/dayrun/internal/platform"
)

var deskLog = logging.ForComponent(logging.CompDesktop)

// Desktop implements the session capability set for the local machine.
type Desktop struct {
	// Out receives plain-text stand-ins when no desktop service is
	// available; defaults to stdout.
	Out io.Writer
}

func New() *Desktop {
	return &Desktop{Out: os.Stdout}
}

// Notify sends a desktop notification. On macOS it goes through
// osascript, on Linux through notify-send when installed. Everywhere
// else, and when the tools are missing, the notification is printed as
// a plain line so it is never lost silently.
func (d *Desktop) Notify(title, message string) {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(message), appleScriptString(title))
		if err := exec.Command("osascript", "-e", script).Run(); err != nil {
			deskLog.Debug("osascript notification failed", "error", err)
			d.printLine(notifyLine(title, message))
		}
	case platform.PlatformLinux:
		if _, err := exec.LookPath("notify-send"); err == nil {
			if err := exec.Command("notify-send", title, message).Run(); err != nil {
				deskLog.Debug("notify-send failed", "error", err)
			}
			return
		}
		d.printLine(notifyLine(title, message))
	default:
		// WSL and unsupported platforms have no reliable notification
		// path into the host desktop.
		d.printLine(notifyLine(title, message))
	}
}

// SetDoNotDisturb toggles the desktop's notification banners. Returns
// whether any attempt could be made; the desktop may still ignore it.
func (d *Desktop) SetDoNotDisturb(enable bool) bool {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		// There is no stable scripting hook for Focus across macOS
		// versions, so the best available move is an advisory
		// notification telling the user what was toggled.
		if _, err := exec.LookPath("osascript"); err != nil {
			return false
		}
		script := fmt.Sprintf("display notification %s with title \"DayRun\"",
			appleScriptString(dndAdvisory(enable)))
		if err := exec.Command("osascript", "-e", script).Run(); err != nil {
			deskLog.Debug("osascript dnd advisory failed", "error", err)
		}
		return true
	case platform.PlatformLinux:
		if _, err := exec.LookPath("gsettings"); err == nil {
			val := "true"
			if enable {
				val = "false"
			}
			cmd := exec.Command("gsettings", "set", "org.gnome.desktop.notifications", "show-banners", val)
			if err := cmd.Run(); err != nil {
				deskLog.Debug("gsettings dnd toggle failed", "error", err)
			}
			return true
		}
		if _, err := exec.LookPath("notify-send"); err == nil {
			_ = exec.Command("notify-send", "DayRun", dndAdvisory(enable)+" (attempt)").Run()
			return true
		}
		return false
	default:
		return false
	}
}

// Open launches an application, file, or URL. App names resolve via
// `open -a` on macOS; on Linux the chain is xdg-open for URLs and
// paths, then a $PATH executable, then gtk-launch, then xdg-open as a
// last resort.
func (d *Desktop) Open(target string) bool {
	switch p := platform.Detect(); p {
	case platform.PlatformMacOS:
		if isURL(target) || fileExists(target) {
			_ = exec.Command("open", target).Run()
			return true
		}
		if err := exec.Command("open", "-a", target).Run(); err != nil {
			// Not an app name; let `open` have a final try.
			_ = exec.Command("open", target).Run()
		}
		return true
	case platform.PlatformLinux, platform.PlatformWSL1, platform.PlatformWSL2:
		return d.openLinux(target)
	default:
		return false
	}
}

func (d *Desktop) openLinux(target string) bool {
	if isURL(target) || fileExists(target) {
		if _, err := exec.LookPath("xdg-open"); err == nil {
			_ = exec.Command("xdg-open", target).Run()
			return true
		}
		d.printLine("Open: " + target)
		return false
	}

	if path, err := exec.LookPath(target); err == nil {
		cmd := exec.Command(path)
		if err := cmd.Start(); err != nil {
			deskLog.Debug("failed to launch executable", "target", target, "error", err)
			return false
		}
		go func() { _ = cmd.Wait() }()
		return true
	}
	if _, err := exec.LookPath("gtk-launch"); err == nil {
		_ = exec.Command("gtk-launch", target).Run()
		return true
	}
	if _, err := exec.LookPath("xdg-open"); err == nil {
		_ = exec.Command("xdg-open", target).Run()
		return true
	}
	return false
}

func (d *Desktop) printLine(line string) {
	w := d.Out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, line)
}

func notifyLine(title, message string) string {
	return fmt.Sprintf("[notify] %s: %s", title, message)
}

func dndAdvisory(enable bool) string {
	if enable {
		return "Do Not Disturb enabled by DayRun"
	}
	return "Do Not Disturb disabled by DayRun"
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

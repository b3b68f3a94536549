package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform identifies the host environment. Desktop integrations
// (notifications, do-not-disturb, target opening) pick their commands
// based on this.
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result.
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}
	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		return detectLinuxFlavor()
	default:
		return PlatformUnknown
	}
}

// detectLinuxFlavor distinguishes native Linux from WSL1/WSL2. WSL matters
// here because notify-send and gsettings behave differently (or are absent)
// inside WSL distros.
func detectLinuxFlavor() Platform {
	inWSL := os.Getenv("WSL_DISTRO_NAME") != ""
	version, err := os.ReadFile("/proc/version")
	if err == nil {
		v := string(version)
		// WSL2 kernels report "microsoft-standard"; WSL1 reports "Microsoft"
		if strings.Contains(v, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(v, "Microsoft") || strings.Contains(v, "microsoft") {
			inWSL = true
		}
	}
	if !inWSL {
		return PlatformLinux
	}
	// /run/WSL exists only under WSL2
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	return PlatformWSL1
}

// IsWSL returns true in any WSL environment.
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// String returns a human-readable platform name.
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// CheckFsnotifySupport reports whether file watching is reliable for a path.
// Returns a warning message when the path sits on a filesystem where inotify
// events don't propagate (9p under WSL2, NFS, CIFS, SSHFS), or "" when
// watching should work. Callers that fall back to polling anyway use this
// only to explain degraded behavior to the user.
func CheckFsnotifySupport(path string) string {
	if runtime.GOOS != "linux" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}

	// Longest mountpoint prefix wins
	var matchedMount, matchedFsType string
	for _, line := range strings.Split(string(mounts), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if strings.HasPrefix(absPath, fields[1]) && len(fields[1]) > len(matchedMount) {
			matchedMount = fields[1]
			matchedFsType = fields[2]
		}
	}

	switch {
	case matchedFsType == "9p":
		return "state directory is on a 9p mount (WSL2 Windows filesystem): file watching disabled, falling back to polling"
	case matchedFsType == "nfs" || matchedFsType == "nfs4":
		return "state directory is on an NFS mount: file watching may be unreliable, polling will catch changes"
	case matchedFsType == "cifs" || matchedFsType == "smbfs":
		return "state directory is on a CIFS/SMB mount: file watching may be unreliable, polling will catch changes"
	case strings.HasPrefix(matchedFsType, "fuse.sshfs"):
		return "state directory is on an SSHFS mount: file watching disabled, falling back to polling"
	}

	return ""
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dayrun/dayrun/internal/logging"
	"github.com/dayrun/dayrun/internal/session"
)

const Version = "0.3.0"

var cliLog = logging.ForComponent(logging.CompCLI)

func init() {
	initColorProfile()
}

// initColorProfile configures the lipgloss color profile up front so
// styled output looks the same across terminals. DAYRUN_COLOR
// (truecolor/256/16/none) overrides detection.
func initColorProfile() {
	if colorEnv := os.Getenv("DAYRUN_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	if os.Getenv("WT_SESSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// ANSI256 works over SSH and in older emulators.
	lipgloss.SetColorProfile(termenv.ANSI256)
}

// initLogging enables file logging when DAYRUN_DEBUG is set; otherwise
// all debug output is discarded.
func initLogging() {
	cfg := logging.Config{}
	if os.Getenv("DAYRUN_DEBUG") != "" {
		cfg.Debug = true
		if env, err := session.NewEnvironment(); err == nil {
			if err := env.EnsureDir(); err == nil {
				cfg.LogDir = env.LogDir()
			}
		}
	}
	logging.Init(cfg)
}

func main() {
	initLogging()
	defer logging.Shutdown()

	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("DayRun v%s\n", Version)
	case "help", "--help", "-h":
		printHelp()
	case "start":
		handleStart(args[1:])
	case "status":
		handleStatus(args[1:])
	case "stop":
		handleStop(args[1:])
	case "history":
		handleHistory(args[1:])
	case "templates":
		handleTemplates(args[1:])
	case "_monitor":
		runMonitor(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("DayRun - focused session launcher")
	fmt.Println()
	fmt.Println("Usage: dayrun <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  start       Start a focus session (templates, DND, apps, tmux)")
	fmt.Println("  status      Show the detached session, if any")
	fmt.Println("  stop        Stop a detached session")
	fmt.Println("  history     Show logged sessions")
	fmt.Println("  templates   List, add, or remove session templates")
	fmt.Println("  version     Print the version")
	fmt.Println("  help        Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  dayrun start -t deep-work --detach")
	fmt.Println("  dayrun start -d 45m --apps slack --cmd 'make watch'")
	fmt.Println("  dayrun status --wait")
	fmt.Println("  dayrun history --last 10")
	fmt.Println()
	fmt.Println("Run 'dayrun <command> --help' for command options.")
}

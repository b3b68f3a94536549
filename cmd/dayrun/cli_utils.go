package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dayrun/dayrun/internal/desktop"
	"github.com/dayrun/dayrun/internal/session"
	"github.com/dayrun/dayrun/internal/tmux"
)

// normalizeArgs reorders args so flags come before positionals. Go's
// flag package stops parsing at the first non-flag argument, which
// would make "templates remove deep-work --json" silently ignore
// --json.
func normalizeArgs(fs *flag.FlagSet, args []string) []string {
	boolFlags := make(map[string]bool)
	fs.VisitAll(func(f *flag.Flag) {
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			boolFlags[f.Name] = true
		}
	})

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)

			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") {
				continue
			}
			// Non-bool flags consume the following value argument.
			if !boolFlags[name] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return append(flags, positional...)
}

// firstNonEmpty returns the first non-empty string after trimming.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// CLIOutput handles human and JSON output modes for commands.
type CLIOutput struct {
	jsonMode  bool
	quietMode bool
}

func NewCLIOutput(jsonMode, quietMode bool) *CLIOutput {
	return &CLIOutput{
		jsonMode:  jsonMode,
		quietMode: quietMode,
	}
}

// Success prints a success message, or the data as JSON in json mode.
func (c *CLIOutput) Success(message string, data interface{}) {
	if c.quietMode {
		return
	}
	if c.jsonMode {
		c.printJSON(data)
		return
	}
	fmt.Printf("%s %s\n", successSymbol, message)
}

// Error prints an error to stderr, or a JSON error object in json mode.
func (c *CLIOutput) Error(message string, code string) {
	if c.jsonMode {
		c.printJSON(map[string]interface{}{
			"success": false,
			"error":   message,
			"code":    code,
		})
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

// Print prints raw human output, or the data as JSON in json mode.
func (c *CLIOutput) Print(humanOutput string, jsonData interface{}) {
	if c.quietMode {
		return
	}
	if c.jsonMode {
		c.printJSON(jsonData)
		return
	}
	fmt.Print(humanOutput)
}

func (c *CLIOutput) printJSON(data interface{}) {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to format JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
}

// Symbols for human-readable output
const (
	successSymbol = "✓"
	errorSymbol   = "✕"
)

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeInvalidDuration = "INVALID_DURATION"
	ErrCodeInvalidFlag     = "INVALID_FLAG"
	ErrCodeSpawnFailed     = "SPAWN_FAILED"
	ErrCodeStorage         = "STORAGE"
)

// stringListFlag collects a repeatable string flag (start --cmd).
type stringListFlag []string

func (s *stringListFlag) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringListFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// boolFlagPair turns an on/off flag pair into a tristate: nil when
// neither was given. Both at once is a usage error.
func boolFlagPair(on, off bool) (*bool, bool) {
	if on && off {
		return nil, false
	}
	if on {
		v := true
		return &v, true
	}
	if off {
		v := false
		return &v, true
	}
	return nil, true
}

// mustEnv builds the dayrun environment or exits.
func mustEnv(out *CLIOutput) *session.Environment {
	env, err := session.NewEnvironment()
	if err == nil {
		err = env.EnsureDir()
	}
	if err != nil {
		out.Error(fmt.Sprintf("failed to prepare dayrun directory: %v", err), ErrCodeStorage)
		os.Exit(1)
	}
	return env
}

// newRunner wires the real capabilities into a session runner.
func newRunner(env *session.Environment) *session.Runner {
	d := desktop.New()
	return &session.Runner{
		Notifier: d,
		DND:      d,
		Opener:   d,
		Mux:      tmux.NewClient(),
		History:  session.NewHistoryStore(env),
		Out:      os.Stdout,
	}
}

// loadConfig loads the config, downgrading a parse failure to a warning
// so a broken file never blocks a session.
func loadConfig(store *session.ConfigStore) *session.Config {
	cfg, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cfg
}

// truncateCell fits s into width columns, runewidth-aware.
func truncateCell(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// formatTS renders a unix timestamp in local time, "-" for zero.
func formatTS(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04:05")
}

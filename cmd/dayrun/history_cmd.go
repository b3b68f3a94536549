package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dayrun/dayrun/internal/session"
)

var (
	historyIndexStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	historyTemplateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	historyOpenStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func handleHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	last := fs.Int("last", 20, "Number of sessions to show")
	jsonOutput := fs.Bool("json", false, "Output history as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: dayrun history [options]")
		fmt.Println()
		fmt.Println("Show logged sessions, newest first.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, false)
	env := mustEnv(out)

	records := session.NewHistoryStore(env).Last(*last)
	if len(records) == 0 {
		out.Print("No sessions logged yet.\n", []session.Record{})
		return
	}

	var b strings.Builder
	for i, rec := range records {
		b.WriteString(formatHistoryRow(i, rec))
		b.WriteByte('\n')
	}
	out.Print(b.String(), records)
}

// formatHistoryRow renders one history line:
//
//	[0] 2026-08-24 09:00:00 -> 2026-08-24 10:30:00  duration=1h30m  template=deep-work
//
// A session with no end timestamp (interrupted detach, still running)
// shows "-" for the end and is marked open.
func formatHistoryRow(index int, rec session.Record) string {
	start := formatTS(rec.StartTS)
	end := formatTS(rec.EndTS)

	tplName := rec.Template
	if tplName == "" {
		tplName = "-"
	}

	row := fmt.Sprintf("%s %s -> %s  duration=%s  template=%s",
		historyIndexStyle.Render(fmt.Sprintf("[%d]", index)),
		start,
		end,
		session.HumanDuration(rec.DurationSeconds),
		historyTemplateStyle.Render(truncateCell(tplName, 24)),
	)
	if rec.EndTS == 0 {
		row += historyOpenStyle.Render("  (open)")
	}
	if rec.DetachedPID != 0 {
		row += fmt.Sprintf("  detached_pid=%d", rec.DetachedPID)
	}
	return row
}

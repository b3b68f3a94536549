package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dayrun/dayrun/internal/session"
)

var templateNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

func handleTemplates(args []string) {
	if len(args) == 0 {
		printTemplatesHelp()
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		handleTemplatesList(args[1:])
	case "add":
		handleTemplatesAdd(args[1:])
	case "remove", "rm":
		handleTemplatesRemove(args[1:])
	case "help", "--help", "-h":
		printTemplatesHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown templates subcommand: %s\n\n", args[0])
		printTemplatesHelp()
		os.Exit(1)
	}
}

func printTemplatesHelp() {
	fmt.Println("Usage: dayrun templates <list|add|remove> [options]")
	fmt.Println()
	fmt.Println("Manage session templates in config.toml.")
	fmt.Println()
	fmt.Println("Subcommands:")
	fmt.Println("  list                List templates")
	fmt.Println("  add --name NAME     Add a template (see 'templates add --help')")
	fmt.Println("  remove NAME         Remove a template")
}

func handleTemplatesList(args []string) {
	fs := flag.NewFlagSet("templates list", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output templates as JSON")

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, false)
	env := mustEnv(out)
	cfg := loadConfig(session.NewConfigStore(env))

	if len(cfg.Templates) == 0 {
		out.Print("No templates defined.\n", map[string]session.Template{})
		return
	}

	names := make([]string, 0, len(cfg.Templates))
	for name := range cfg.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(formatTemplateRow(name, cfg.Templates[name]))
	}
	out.Print(b.String(), cfg.Templates)
}

func formatTemplateRow(name string, tpl session.Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", templateNameStyle.Render(truncateCell(name, 32)))

	duration := tpl.Duration
	if duration == "" {
		duration = "(default)"
	}
	fmt.Fprintf(&b, "  duration: %s\n", duration)

	if dnd, set := tpl.GetDND(); set {
		fmt.Fprintf(&b, "  dnd: %v\n", dnd)
	}
	if len(tpl.Apps) > 0 {
		fmt.Fprintf(&b, "  apps: %s\n", truncateCell(strings.Join(tpl.Apps, ", "), 72))
	}
	if len(tpl.Cmds) > 0 {
		fmt.Fprintf(&b, "  cmds: %s\n", truncateCell(strings.Join(tpl.Cmds, ", "), 72))
	}
	if tpl.Music != "" {
		fmt.Fprintf(&b, "  music: %s\n", tpl.Music)
	}
	if tpl.Tmux.SessionName != "" {
		fmt.Fprintf(&b, "  tmux: %s (%d panes)\n", tpl.Tmux.SessionName, len(tpl.Tmux.Panes))
	}
	return b.String()
}

func handleTemplatesAdd(args []string) {
	fs := flag.NewFlagSet("templates add", flag.ExitOnError)
	name := fs.String("name", "", "Template name (required)")
	duration := fs.String("duration", "", "Session duration, e.g. 25m, 1h")
	dndOn := fs.Bool("dnd", false, "Enable Do Not Disturb for this template")
	dndOff := fs.Bool("no-dnd", false, "Disable Do Not Disturb for this template")
	apps := fs.String("apps", "", "Comma-separated apps or URLs to open")
	cmds := fs.String("cmds", "", "Comma-separated shell commands")
	tmuxSession := fs.String("tmux-session", "", "tmux session name")
	force := fs.Bool("force", false, "Overwrite an existing template")
	jsonOutput := fs.Bool("json", false, "Output the result as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: dayrun templates add --name NAME [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  dayrun templates add --name writing --duration 45m --dnd --apps obsidian")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, false)

	if *name == "" {
		out.Error("--name is required", ErrCodeInvalidFlag)
		os.Exit(1)
	}
	dndOpt, ok := boolFlagPair(*dndOn, *dndOff)
	if !ok {
		out.Error("--dnd and --no-dnd are mutually exclusive", ErrCodeInvalidFlag)
		os.Exit(1)
	}
	if *duration != "" {
		if _, err := session.ParseDuration(*duration); err != nil {
			out.Error(fmt.Sprintf("Invalid duration: %v", err), ErrCodeInvalidDuration)
			os.Exit(1)
		}
	}

	env := mustEnv(out)
	store := session.NewConfigStore(env)
	cfg := loadConfig(store)

	if _, exists := cfg.Templates[*name]; exists && !*force {
		out.Error(fmt.Sprintf("Template '%s' already exists. Use --force to overwrite.", *name), ErrCodeAlreadyExists)
		os.Exit(1)
	}

	tpl := session.Template{
		Duration: *duration,
		DND:      dndOpt,
		Apps:     splitCommaList(*apps),
		Cmds:     splitCommaList(*cmds),
	}
	tpl.Tmux.SessionName = *tmuxSession
	if tpl.Tmux.SessionName == "" {
		tpl.Tmux.SessionName = "dayrun_" + *name
	}

	if cfg.Templates == nil {
		cfg.Templates = map[string]session.Template{}
	}
	cfg.Templates[*name] = tpl

	// Template save is the whole point of this command, so a write
	// failure is fatal, unlike the best-effort session stores.
	if err := store.Save(cfg); err != nil {
		out.Error(fmt.Sprintf("Failed to save config: %v", err), ErrCodeStorage)
		os.Exit(1)
	}

	cliLog.Info("template saved", "name", *name)
	out.Success(fmt.Sprintf("Template '%s' saved.", *name), map[string]interface{}{
		"success":  true,
		"name":     *name,
		"template": tpl,
	})
}

func handleTemplatesRemove(args []string) {
	fs := flag.NewFlagSet("templates remove", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output the result as JSON")

	fs.Usage = func() {
		fmt.Println("Usage: dayrun templates remove <name>")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		os.Exit(1)
	}

	out := NewCLIOutput(*jsonOutput, false)

	if fs.NArg() != 1 {
		out.Error("templates remove takes exactly one template name", ErrCodeInvalidFlag)
		os.Exit(1)
	}
	name := fs.Arg(0)

	env := mustEnv(out)
	store := session.NewConfigStore(env)
	cfg := loadConfig(store)

	if _, exists := cfg.Templates[name]; !exists {
		out.Error(fmt.Sprintf("Template '%s' not found.", name), ErrCodeNotFound)
		os.Exit(1)
	}

	delete(cfg.Templates, name)
	if err := store.Save(cfg); err != nil {
		out.Error(fmt.Sprintf("Failed to save config: %v", err), ErrCodeStorage)
		os.Exit(1)
	}

	cliLog.Info("template removed", "name", name)
	out.Success(fmt.Sprintf("Template '%s' removed.", name), map[string]interface{}{
		"success": true,
		"name":    name,
	})
}

// splitCommaList splits a comma-separated flag value, dropping empties.
func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

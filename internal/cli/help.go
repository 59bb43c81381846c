// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// help.go - Process usage and console help.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

// Usage returns the process usage text.
func Usage() string {
	return `workerctl - manager of controllable async workers

Usage: workerctl --threads N [options]

Options:
  -t, --threads N      number of worker threads to run (required unless set in the config)
  -c, --config PATH    config file (default ~/.workerctl/config.toml)
      --init-config    write the default config file and exit
  -h, --help           print this help message
      --version        print the version

Environment:
  WORKERCTL_THREADS, WORKERCTL_LOG_LEVEL, WORKERCTL_CLOSE_POLICY
`
}

// =============================================================================
// CONSOLE HELP
// =============================================================================

// commandDoc describes one console command.
type commandDoc struct {
	Name    string
	Aliases []string
	Usage   string
	Summary string
}

var commandDocs = []commandDoc{
	{Name: "status", Aliases: []string{"s", "ls"}, Usage: "status [id]", Summary: "show all workers, or one"},
	{Name: "pause", Usage: "pause <id>", Summary: "pause a running worker"},
	{Name: "restart", Aliases: []string{"resume"}, Usage: "restart <id>", Summary: "resume a paused worker"},
	{Name: "stop", Usage: "stop <id or all>", Summary: "stop a worker, or every live one, for good"},
	{Name: "spawn", Usage: "spawn [payload]", Summary: "start another worker, random payload by default"},
	{Name: "watch", Usage: "watch", Summary: "live monitor with progress bars"},
	{Name: "help", Aliases: []string{"?"}, Usage: "help [command]", Summary: "show this help"},
	{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Summary: "stop all workers and leave"},
}

// lookupCommand resolves a command name or alias.
func lookupCommand(name string) (commandDoc, bool) {
	for _, doc := range commandDocs {
		if doc.Name == name {
			return doc, true
		}
		for _, alias := range doc.Aliases {
			if alias == name {
				return doc, true
			}
		}
	}
	return commandDoc{}, false
}

// commandNames lists every command name and alias.
func commandNames() []string {
	var names []string
	for _, doc := range commandDocs {
		names = append(names, doc.Name)
		names = append(names, doc.Aliases...)
	}
	return names
}

// usageOf returns the usage line of a command.
func usageOf(name string) string {
	doc, _ := lookupCommand(name)
	return doc.Usage
}

// helpMarkdown is the console help as markdown, for glamour.
func helpMarkdown(payloads []string) string {
	var b strings.Builder
	b.WriteString("# workerctl console\n\n")
	b.WriteString("Workers are numbered from 1 in the order they were started.\n\n")
	b.WriteString("| command | aliases | description |\n|---|---|---|\n")
	for _, doc := range commandDocs {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", doc.Usage, strings.Join(doc.Aliases, ", "), doc.Summary)
	}
	if len(payloads) > 0 {
		b.WriteString("\nPayloads: `" + strings.Join(payloads, "`, `") + "`\n")
	}
	return b.String()
}

// helpPlain is the console help for terminals without colors.
func helpPlain(payloads []string) string {
	width := 0
	for _, doc := range commandDocs {
		width = max(width, runewidth.StringWidth(doc.Usage))
	}

	var b strings.Builder
	b.WriteString("Commands (workers are numbered from 1):\n")
	for _, doc := range commandDocs {
		line := "  " + runewidth.FillRight(doc.Usage, width) + "  " + doc.Summary
		if len(doc.Aliases) > 0 {
			line += " (" + strings.Join(doc.Aliases, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}
	if len(payloads) > 0 {
		b.WriteString("Payloads: " + strings.Join(payloads, ", ") + "\n")
	}
	return b.String()
}

// RenderHelp renders the console help, through glamour when colors are on.
// Falls back to plain text if glamour fails.
func RenderHelp(payloads []string) string {
	if !ColorsEnabled() {
		return helpPlain(payloads)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	if err != nil {
		return helpPlain(payloads)
	}
	out, err := r.Render(helpMarkdown(payloads))
	if err != nil {
		return helpPlain(payloads)
	}
	return out
}

// commandHelp renders the help of a single command.
func commandHelp(name string) (string, error) {
	doc, ok := lookupCommand(strings.ToLower(name))
	if !ok {
		return "", unknownCommand(name)
	}
	text := fmt.Sprintf("Usage: %s\n  %s\n", doc.Usage, doc.Summary)
	if len(doc.Aliases) > 0 {
		text += "  aliases: " + strings.Join(doc.Aliases, ", ") + "\n"
	}
	return text, nil
}

// unknownCommand builds the error for a command that doesn't exist.
func unknownCommand(name string) error {
	reason := fmt.Sprintf("unknown command '%s'", name)
	if s := SuggestCommand(name); s != "" {
		reason += fmt.Sprintf(", did you mean '%s'?", s)
	}
	return NewUsageError(reason + " (type 'help' for the list)")
}

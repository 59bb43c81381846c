// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// console.go - Interactive worker console.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/workerctl/internal/manager"
	"github.com/jeranaias/workerctl/internal/util"
	"github.com/jeranaias/workerctl/internal/worker"
	"github.com/peterh/liner"
	"go.uber.org/zap"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// Spawner starts a worker running the named payload; "" picks one at random.
type Spawner func(payload string) (worker.Controllable, error)

// Watcher shows the live monitor until the user leaves it.
type Watcher func(ctx context.Context) error

// LineReader supplies console input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// =============================================================================
// CONSOLE
// =============================================================================

// Console reads commands and applies them to the workers of a manager.
type Console struct {
	mgr       *manager.Manager
	out       io.Writer
	log       *zap.Logger
	spawn     Spawner
	watch     Watcher
	payloads  []string
	prompt    string
	nameWidth int
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithConsoleLogger sets the logger (default: no-op).
func WithConsoleLogger(log *zap.Logger) ConsoleOption {
	return func(c *Console) { c.log = log }
}

// WithSpawner enables the spawn command. payloads are listed in the help.
func WithSpawner(s Spawner, payloads []string) ConsoleOption {
	return func(c *Console) {
		c.spawn = s
		c.payloads = payloads
	}
}

// WithWatcher enables the watch command.
func WithWatcher(w Watcher) ConsoleOption {
	return func(c *Console) { c.watch = w }
}

// WithPrompt sets the input prompt.
func WithPrompt(p string) ConsoleOption {
	return func(c *Console) { c.prompt = p }
}

// WithNameWidth sets the width of the name column of the status table.
func WithNameWidth(n int) ConsoleOption {
	return func(c *Console) { c.nameWidth = n }
}

// NewConsole creates a console over mgr writing to out.
func NewConsole(mgr *manager.Manager, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		mgr:       mgr,
		out:       out,
		log:       zap.NewNop(),
		prompt:    "workerctl> ",
		nameWidth: 24,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run reads and executes lines until quit, end of input or ctx is done.
// Command errors are printed and never end the loop.
func (c *Console) Run(ctx context.Context, in LineReader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := in.ReadLine(c.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				// Ctrl+C or Ctrl+D
				fmt.Fprintln(c.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		err = c.Execute(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.log.Debug("command failed", zap.String("line", line), zap.Error(err))
			DisplayError(c.out, err)
		}
	}
}

// Execute runs one console line. Blank lines do nothing.
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	doc, ok := lookupCommand(name)
	if !ok {
		return unknownCommand(fields[0])
	}
	c.log.Debug("command", zap.String("command", doc.Name), zap.Strings("args", args))

	switch doc.Name {
	case "status":
		return c.status(args)
	case "pause":
		return c.control(doc.Name, args, c.mgr.Pause, "paused")
	case "restart":
		return c.control(doc.Name, args, c.mgr.Restart, "restarted")
	case "stop":
		if len(args) == 1 && strings.EqualFold(args[0], "all") {
			return c.stopAll()
		}
		return c.control(doc.Name, args, c.mgr.Stop, "stopped")
	case "spawn":
		return c.spawnWorker(args)
	case "watch":
		return c.watchWorkers(ctx, args)
	case "help":
		return c.help(args)
	case "quit":
		return ErrQuit
	}

	return unknownCommand(fields[0])
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

func (c *Console) status(args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprint(c.out, RenderTable(c.mgr.All(), c.nameWidth))
		fmt.Fprintln(c.out, RenderConditional(DimStyle, c.mgr.Summary()))
		return nil
	case 1:
		id, err := parseID("status", args)
		if err != nil {
			return err
		}
		w, err := c.mgr.Get(id)
		if err != nil {
			return &CommandError{Command: "status", Target: id, Err: err}
		}
		fmt.Fprintf(c.out, "%d: %s\n", id, w)
		return nil
	default:
		return NewUsageErrorWithUsage("too many arguments", usageOf("status"))
	}
}

func (c *Console) control(cmd string, args []string, fn func(id int) error, done string) error {
	if len(args) != 1 {
		return NewUsageErrorWithUsage(cmd+" takes exactly one worker id", usageOf(cmd))
	}
	id, err := parseID(cmd, args)
	if err != nil {
		return err
	}
	if err := fn(id); err != nil {
		return &CommandError{Command: cmd, Target: id, Err: err}
	}
	fmt.Fprintln(c.out, RenderConditional(SuccessStyle, fmt.Sprintf("worker %d %s", id, done)))
	return nil
}

func (c *Console) stopAll() error {
	live := c.mgr.Live()
	if err := c.mgr.StopAll(); err != nil {
		return &CommandError{Command: "stop all", Err: err}
	}
	fmt.Fprintln(c.out, RenderConditional(SuccessStyle, fmt.Sprintf("stopped %d live workers", live)))
	return nil
}

func (c *Console) spawnWorker(args []string) error {
	if len(args) > 1 {
		return NewUsageErrorWithUsage("too many arguments", usageOf("spawn"))
	}
	if c.spawn == nil {
		return &CommandError{Command: "spawn", Err: errors.New("no payload factory configured")}
	}

	payload := ""
	if len(args) == 1 {
		payload = args[0]
	}
	w, err := c.spawn(payload)
	if err != nil {
		return &CommandError{Command: "spawn", Err: err}
	}
	id := c.mgr.Add(w)
	fmt.Fprintln(c.out, RenderConditional(SuccessStyle, fmt.Sprintf("started worker %d (%s)", id, w.Name())))
	return nil
}

func (c *Console) watchWorkers(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return NewUsageErrorWithUsage("watch takes no arguments", usageOf("watch"))
	}
	if c.watch == nil {
		return &CommandError{Command: "watch", Err: errors.New("monitor unavailable")}
	}
	if err := c.watch(ctx); err != nil {
		return &CommandError{Command: "watch", Err: err}
	}
	return nil
}

func (c *Console) help(args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprint(c.out, RenderHelp(c.payloads))
		return nil
	case 1:
		text, err := commandHelp(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, text)
		return nil
	default:
		return NewUsageErrorWithUsage("too many arguments", usageOf("help"))
	}
}

// parseID parses the single worker id argument of cmd.
func parseID(cmd string, args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, NewUsageErrorWithUsage(
			fmt.Sprintf("invalid worker id '%s': ids are positive integers", args[0]),
			usageOf(cmd))
	}
	return id, nil
}

// =============================================================================
// LINE EDITING
// =============================================================================

// LinerReader is a LineReader with history and command completion.
type LinerReader struct {
	line        *liner.State
	historyFile string
}

// NewLinerReader opens the terminal line editor. History is loaded from and
// saved to historyFile unless it is empty.
func NewLinerReader(historyFile string) *LinerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var matches []string
		for _, name := range commandNames() {
			if strings.HasPrefix(name, strings.ToLower(input)) {
				matches = append(matches, name)
			}
		}
		return matches
	})

	r := &LinerReader{line: line, historyFile: historyFile}
	r.loadHistory()
	return r
}

func (r *LinerReader) loadHistory() {
	if r.historyFile == "" {
		return
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine prompts for one line. Non-empty lines go into the history.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history (owner read/write only) and restores the terminal.
func (r *LinerReader) Close() error {
	var saveErr error
	if r.historyFile != "" {
		var buf bytes.Buffer
		if _, err := r.line.WriteHistory(&buf); err != nil {
			saveErr = fmt.Errorf("write history: %w", err)
		} else if err := util.AtomicWriteFile(r.historyFile, buf.Bytes(), 0600); err != nil {
			saveErr = fmt.Errorf("save history: %w", err)
		}
	}
	return errors.Join(saveErr, r.line.Close())
}

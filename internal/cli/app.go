// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Process entry point: options, config, workers, console.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/workerctl/internal/config"
	"github.com/jeranaias/workerctl/internal/logger"
	"github.com/jeranaias/workerctl/internal/manager"
	"github.com/jeranaias/workerctl/internal/payloads"
	"github.com/jeranaias/workerctl/internal/ui/monitor"
	"github.com/jeranaias/workerctl/internal/worker"
	"go.uber.org/zap"
)

// Version is set by main (and at build time with -ldflags).
var Version = "dev"

// shutdownTimeout bounds how long quitting waits for live workers.
const shutdownTimeout = 30 * time.Second

// Run runs workerctl with the given arguments and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, args, stdout, stderr, nil)
}

// run is Run with an injectable input; nil means the terminal line editor.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, in LineReader) int {
	opts, err := ParseOptions(args)
	if err != nil {
		DisplayError(stderr, err)
		fmt.Fprint(stderr, Usage())
		return GetExitCode(err)
	}
	if opts.Help {
		fmt.Fprint(stdout, Usage())
		return ExitSuccess
	}
	if opts.Version {
		fmt.Fprintf(stdout, "workerctl %s\n", Version)
		return ExitSuccess
	}

	path := resolveConfigPath(opts.ConfigPath)

	if opts.InitConfig {
		if err := config.Default().Save(path); err != nil {
			err = &ConfigError{Path: path, Err: err}
			DisplayError(stderr, err)
			return GetExitCode(err)
		}
		fmt.Fprintf(stdout, "wrote default config to %s\n", path)
		return ExitSuccess
	}

	cfg, err := loadConfig(path)
	if err != nil {
		DisplayError(stderr, err)
		return GetExitCode(err)
	}

	threads := cfg.Workers
	if opts.Threads > 0 {
		threads = opts.Threads
	}
	if threads <= 0 {
		err := NewUsageError("the option '--threads' is required but missing")
		DisplayError(stderr, err)
		fmt.Fprint(stderr, Usage())
		return GetExitCode(err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		DisplayError(stderr, fmt.Errorf("init logger: %w", err))
		return ExitGeneralError
	}
	defer log.Sync()

	if err := session(ctx, cfg, path, threads, log, stdout, in); err != nil {
		log.Error("session failed", zap.Error(err))
		DisplayError(stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// session starts the workers, runs the console and shuts everything down.
func session(ctx context.Context, cfg *config.Config, path string, threads int, log *logger.Logger, out io.Writer, in LineReader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		err := config.Watch(ctx, path,
			func(c *config.Config) {
				if err := log.SetLevel(c.Logger.Level); err != nil {
					log.Warn("config reload: bad log level", zap.Error(err))
				}
			},
			func(err error) { log.Warn("config reload failed", zap.Error(err)) })
		if err != nil {
			log.Debug("config watch unavailable", zap.String("path", path), zap.Error(err))
		}
	}()

	if mode, err := ParseColorMode(cfg.Console.Color); err == nil {
		SetColorMode(mode)
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	workerOpts := []worker.Option{
		worker.WithLogger(log.Logger),
		worker.WithClosePolicy(cfg.ClosePolicyValue()),
	}

	mgr := manager.New(log.Logger)
	spawn := func(payload string) (worker.Controllable, error) {
		if payload == "" {
			return payloads.Random(rng, cfg.Payloads, workerOpts...)
		}
		if !payloads.Known(payload) {
			return nil, fmt.Errorf("unknown payload '%s'", payload)
		}
		return payloads.Start(payload, rng, cfg.Payloads, workerOpts...)
	}

	log.Info("starting workers", zap.Int("threads", threads), zap.String("close_policy", cfg.ClosePolicy))
	spawnErr := mgr.Spawn(threads, func() (worker.Controllable, error) { return spawn("") })

	console := NewConsole(mgr, out,
		WithConsoleLogger(log.Logger),
		WithPrompt(cfg.Console.Prompt),
		WithNameWidth(cfg.Console.NameWidth),
		WithSpawner(spawn, payloads.Names),
		WithWatcher(func(ctx context.Context) error {
			if !IsInteractive() {
				return errors.New("the monitor needs an interactive terminal")
			}
			refresh := time.Duration(cfg.Console.WatchRefreshMS) * time.Millisecond
			return monitor.Run(ctx, mgr, refresh)
		}),
	)

	var runErr error
	if spawnErr == nil {
		fmt.Fprintf(out, "%s %d workers, type 'help' for commands\n",
			RenderConditional(TitleStyle, "workerctl"), mgr.Len())
		runErr = console.Execute(ctx, "status")

		if in == nil {
			reader := NewLinerReader(historyPath(cfg))
			runErr = errors.Join(runErr, console.Run(ctx, reader))
			if err := reader.Close(); err != nil {
				log.Warn("closing line editor", zap.Error(err))
			}
		} else {
			runErr = errors.Join(runErr, console.Run(ctx, in))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	live := mgr.Live()
	shutdownErr := mgr.Shutdown(shutdownCtx)
	log.Info("shutdown complete", zap.Int("live_at_quit", live), zap.Error(shutdownErr))

	return errors.Join(spawnErr, runErr, shutdownErr)
}

// resolveConfigPath returns the config file to use.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p, err := config.ConfigPath(); err == nil {
		return p
	}
	return config.DefaultPath("config.toml")
}

// loadConfig loads path and checks payload names, which config can't know.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	for _, name := range cfg.Payloads.Enabled {
		if !payloads.Known(name) {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("payloads.enabled: unknown payload '%s'", name)}
		}
	}
	return cfg, nil
}

func historyPath(cfg *config.Config) string {
	if cfg.Console.HistoryFile != "" {
		return cfg.Console.HistoryFile
	}
	return config.DefaultPath("history")
}

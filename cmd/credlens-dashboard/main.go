// Copyright 2026 The Credlens Authors
// SPDX-License-Identifier: Apache-2.0

// credlens-dashboard is the interactive credit-scoring dashboard: a
// terminal UI over a scoring service. It bootstraps the feature
// catalog and client registry, then serves charts out of a local
// artifact cache, fetching each distinct chart from the service at
// most once across runs. Scores are always live.
//
// Configuration comes from a single YAML file, located via the
// CREDLENS_CONFIG environment variable or the --config flag.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/credlens/credlens/lib/artifactcache"
	"github.com/credlens/credlens/lib/config"
	"github.com/credlens/credlens/lib/dashview"
	"github.com/credlens/credlens/lib/process"
	"github.com/credlens/credlens/lib/scoring"
	"github.com/credlens/credlens/lib/session"
	"github.com/credlens/credlens/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var serverURL string

	flagSet := pflag.NewFlagSet("credlens-dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to credlens.yaml (default: $CREDLENS_CONFIG)")
	flagSet.StringVar(&serverURL, "server", "", "scoring service URL (overrides config)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match other Credlens binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("credlens-dashboard")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Scoring.BaseURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	// Warnings and errors only: the TUI owns the terminal, so routine
	// logging would corrupt the alt-screen display.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Pin the color profile so rendering is identical across
	// terminals and in tmux sessions.
	lipgloss.SetColorProfile(termenv.ANSI256)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := scoring.NewClient(scoring.Config{
		BaseURL:          cfg.Scoring.BaseURL,
		Logger:           logger,
		Timeout:          cfg.Scoring.Timeout.Std(),
		BivariateTimeout: cfg.Scoring.BivariateTimeout.Std(),
	})
	if err != nil {
		return err
	}

	sess, err := session.Bootstrap(ctx, client, logger)
	if err != nil {
		return fmt.Errorf("connecting to scoring service at %s: %w", cfg.Scoring.BaseURL, err)
	}

	store, err := artifactcache.NewStore(cfg.Cache.Dir, logger)
	if err != nil {
		return err
	}
	deriver, err := artifactcache.NewDeriver(sess.Catalog, artifactcache.Limits{
		MinFeatures: cfg.Dashboard.MinFeatures,
		MaxFeatures: cfg.Dashboard.MaxFeatures,
	})
	if err != nil {
		return err
	}
	fetcher, err := artifactcache.NewFetcher(deriver, store, client, logger)
	if err != nil {
		return err
	}

	model, err := dashview.New(dashview.Config{
		Session:          sess,
		Artifacts:        fetcher,
		Features:         client,
		Logger:           logger,
		GlobalFeatures:   cfg.Dashboard.GlobalFeatures,
		LocalFeatures:    cfg.Dashboard.LocalFeatures,
		MinFeatures:      cfg.Dashboard.MinFeatures,
		MaxFeatures:      cfg.Dashboard.MaxFeatures,
		DeclineThreshold: cfg.Dashboard.DeclineThreshold,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Credlens dashboard — interactive terminal UI for credit scoring.

Connects to a scoring service, lets you pick a client, and shows the
default-risk gauge plus feature impact and dependence charts. Charts
are cached on local disk; a chart already fetched in any earlier run
is served from the cache without touching the service.

Usage:
  credlens-dashboard [flags]

Examples:
  # Use the config from $CREDLENS_CONFIG
  credlens-dashboard

  # Explicit config file and server override
  credlens-dashboard --config ./credlens.yaml --server http://localhost:8500

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

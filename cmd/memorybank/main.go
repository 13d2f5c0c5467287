package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"memorybank/internal/adapters/editor"
	"memorybank/internal/adapters/obsidian"
	"memorybank/internal/adapters/tui"
	"memorybank/internal/adapters/tui/views"
	"memorybank/internal/bootstrap"
	"memorybank/internal/config"
	"memorybank/internal/logging"
)

func main() {
	rootFlag := flag.String("root", "", "memory bank root (default $MEMORYBANK_ROOT or "+config.DefaultRoot+")")
	configFlag := flag.String("config", "", "YAML config file")
	editorFlag := flag.String("editor", "", "editor command, overrides $EDITOR and $VISUAL")
	vaultFlag := flag.String("vault", "", "Obsidian vault containing the memory bank (default the root)")
	logFlag := flag.String("log-file", "", "write logs to this file")
	flag.Parse()

	if err := run(*configFlag, *rootFlag, *editorFlag, *vaultFlag, *logFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, root, editorCmd, vault, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if root != "" {
		cfg.Root = config.ExpandHome(root)
	}

	// The alternate screen owns the terminal
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rt, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The watcher only attaches to directories that exist
	if _, err := rt.Orchestrator.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load memory bank: %w", err)
	}
	if err := rt.Start(ctx, true); err != nil {
		return err
	}

	var opts []editor.Option
	if editorCmd != "" {
		opts = append(opts, editor.WithEditor(editorCmd))
	}
	var vaultOpts []obsidian.Option
	if vault != "" {
		vaultOpts = append(vaultOpts, obsidian.WithVault(config.ExpandHome(vault)))
	}
	app := tui.NewApp(
		views.Deps{Bank: rt.Orchestrator, Cache: rt.Cache},
		editor.NewOpener(opts...),
		tui.WithVaultOpener(obsidian.NewOpener(rt.Orchestrator.Root(), vaultOpts...)),
	)

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

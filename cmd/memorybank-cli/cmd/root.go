package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memorybank/internal/application/commands"
	"memorybank/internal/bootstrap"
	"memorybank/internal/config"
	"memorybank/internal/logging"
)

var (
	rootPath   string
	configPath string
	logLevel   string

	rt     *bootstrap.Runtime
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "memorybank-cli",
	Short: "CLI for managing a project memory bank",
	Long: `memorybank-cli manages a memory bank: a fixed set of markdown documents
(project brief, product context, active context, system patterns, tech
context and progress) kept under one root directory.

Missing documents are recreated from templates whenever the bank is loaded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
}

// Execute runs the root command
func Execute() {
	err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the root command and releases the runtime even when the
// command fails
func run() error {
	err := rootCmd.Execute()
	return errors.Join(err, teardown())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "", "memory bank root (default $MEMORYBANK_ROOT or "+config.DefaultRoot+")")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("root") {
		cfg.Root = config.ExpandHome(rootPath)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	logger, err = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}

	rt, err = bootstrap.New(cfg, logger)
	return err
}

func teardown() error {
	if rt == nil {
		return nil
	}
	err := rt.Close()
	rt = nil
	_ = logger.Sync()
	return err
}

// GetBank returns the initialized memory bank
func GetBank() commands.Bank {
	return rt.Orchestrator
}

// loadBank runs the self-healing load that every read command needs
func loadBank(ctx context.Context) (*commands.InitResult, error) {
	return commands.NewInitCommand(GetBank()).Execute(ctx)
}

// readInput reads a file argument, or stdin for "-"
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return string(data), nil
}

// Package cli wires the sinner commands together with cobra.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sinner-cli/sinner/internal/config"
	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/logging"
	"github.com/sinner-cli/sinner/internal/router"
)

// remoteAuto is the --remote value used when the flag is given without a URL.
const remoteAuto = "auto"

var (
	flagVerbose   bool
	flagNoHistory bool
	flagRemote    string

	// Populated by setup before any command runs.
	cfg    = config.Default()
	logger = zap.NewNop()

	// Replaced in tests.
	loadConfig           = config.Load
	newClient            = llm.NewClient
	stdin      io.Reader = os.Stdin
	now                  = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "sinner",
	Short: "Local-first CLI agent for developers",
	Long: `sinner turns short descriptions, diffs and commit history into names,
commit messages, merge comments, PR descriptions and explanations, using a
local OpenAI-compatible model server such as LM Studio.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		err = &router.UnsupportedCommandError{Command: unknownCommand(err.Error()), Supported: router.Supported()}
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), Describe(err))
	return ExitCode(err)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagVerbose, "verbose", false, "log debug output to stderr")
	pf.BoolVar(&flagNoHistory, "no-history", false, "do not record this run in the local history")
	pf.StringVar(&flagRemote, "remote", "", "send runs to a running `sinner serve` (URL, or empty for the configured server)")
	pf.Lookup("remote").NoOptDefVal = remoteAuto

	rootCmd.SetVersionTemplate(banner() + "version {{.Version}}\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(historyCmd)
	addGenerateCommands(rootCmd)
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if flagNoHistory {
		cfg.History.Enabled = false
	}
	if flagRemote != "" && flagRemote != remoteAuto {
		cfg.Server.URL = flagRemote
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	log, err := logging.New(level)
	if err != nil {
		return err
	}
	logger = log
	logger.Debug("config loaded",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.ResolvedModel()),
		zap.String("file", cfg.File))
	return nil
}

func useRemote() bool {
	return flagRemote != ""
}

// unknownCommand extracts the name from cobra's `unknown command "x" for "sinner"`.
func unknownCommand(msg string) string {
	parts := strings.SplitN(msg, `"`, 3)
	if len(parts) < 3 {
		return msg
	}
	return parts[1]
}

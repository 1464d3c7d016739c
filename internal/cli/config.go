package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sinner-cli/sinner/internal/config"
	"github.com/sinner-cli/sinner/internal/store"
)

var setModelEnvFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration (endpoint, model, history)",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetModelCmd = &cobra.Command{
	Use:     "set-model <model-id>",
	Short:   "Set MODEL_ID in the .env file",
	Example: `  sinner config set-model qwen2.5-coder-1.5b-instruct`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetEnvValue(setModelEnvFile, "MODEL_ID", args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated MODEL_ID to: %s (%s)\n", args[0], setModelEnvFile)
		fmt.Fprintln(cmd.OutOrStdout(), "Run `sinner doctor` to check the model answers.")
		return nil
	},
}

func init() {
	configSetModelCmd.Flags().StringVar(&setModelEnvFile, "env-file", config.DefaultEnvFile, "the .env file to update")
	configCmd.AddCommand(configShowCmd, configSetModelCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintf(out, "  Provider: %s\n", cfg.LLM.Provider)
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		fmt.Fprintf(out, "  API Key: %s\n", setOrNot(cfg.LLM.AnthropicKey))
	case config.ProviderOllama:
		fmt.Fprintf(out, "  Base URL: %s\n", cfg.LLM.OllamaURL)
	default:
		fmt.Fprintf(out, "  Base URL: %s\n", cfg.LLM.BaseURL)
		fmt.Fprintf(out, "  API Key: %s\n", setOrNot(cfg.LLM.APIKey))
	}
	fmt.Fprintf(out, "  Model: %s\n", cfg.LLM.ResolvedModel())
	fmt.Fprintf(out, "  Timeout: %s\n", cfg.LLM.Timeout)

	file := cfg.File
	if file == "" {
		file = "none (" + config.DefaultFile() + ")"
	}
	fmt.Fprintf(out, "  Config file: %s\n", file)

	history := "disabled"
	if cfg.History.Enabled {
		history = cfg.History.Path
		if history == "" {
			if p, err := store.DefaultDBPath(); err == nil {
				history = p
			}
		}
	}
	fmt.Fprintf(out, "  History: %s\n", history)
	fmt.Fprintf(out, "  Server: %s\n", cfg.ServerURL())
	return nil
}

func setOrNot(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}

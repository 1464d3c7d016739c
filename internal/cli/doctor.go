package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/remote"
)

const doctorPrompt = "Reply with the single word: ok"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the model server is reachable and answering",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if useRemote() {
		url := cfg.ServerURL()
		if !remote.NewClient(url, cfg.LLM.Timeout).Healthy(ctx) {
			fmt.Fprintf(out, "%s sinner server at %s\n", failStyle.Render("✗"), url)
			return &llm.UnavailableError{Provider: "sinner", Endpoint: url, Err: fmt.Errorf("health check failed")}
		}
		fmt.Fprintf(out, "%s sinner server at %s\n", okStyle.Render("✓"), url)
		return nil
	}

	client, err := newClient(cfg.LLM)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Provider: %s, model: %s\n", cfg.LLM.Provider, cfg.LLM.ResolvedModel())

	if lister, ok := client.(llm.ModelLister); ok {
		models, err := lister.ListModels(ctx)
		if err != nil {
			fmt.Fprintf(out, "%s list models: %v\n", failStyle.Render("✗"), err)
			return err
		}
		fmt.Fprintf(out, "%s %d model(s) available\n", okStyle.Render("✓"), len(models))
		for _, m := range models {
			marker := " "
			if m == cfg.LLM.ResolvedModel() {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s\n", marker, m)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.LLM.Timeout)
	defer cancel()
	start := time.Now()
	resp, err := client.Complete(ctx, doctorPrompt, 0)
	if err != nil {
		fmt.Fprintf(out, "%s chat completion: %v\n", failStyle.Render("✗"), err)
		return err
	}
	fmt.Fprintf(out, "%s chat completion in %s: %q\n", okStyle.Render("✓"),
		time.Since(start).Round(time.Millisecond), strings.TrimSpace(resp.Content))
	return nil
}

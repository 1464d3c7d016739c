package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

const logo = `███████╗██╗███╗   ██╗███╗   ██╗███████╗██████╗
██╔════╝██║████╗  ██║████╗  ██║██╔════╝██╔══██╗
███████╗██║██╔██╗ ██║██╔██╗ ██║█████╗  ██████╔╝
╚════██║██║██║╚██╗██║██║╚██╗██║██╔══╝  ██╔══██╗
███████║██║██║ ╚████║██║ ╚████║███████╗██║  ██║
╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝`

var (
	logoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	taglineStyle = lipgloss.NewStyle().Faint(true)
)

func banner() string {
	return logoStyle.Render(logo) + "\n\n" + taglineStyle.Render("local-first CLI agent for developers") + "\n"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), banner())
		fmt.Fprintf(cmd.OutOrStdout(), "sinner %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
	},
}

// VersionString returns a formatted version string for use in health checks etc.
func VersionString() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

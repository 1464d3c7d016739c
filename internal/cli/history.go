package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded generations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory()
		if err != nil {
			return err
		}
		if db == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "History is disabled.")
			return nil
		}
		defer db.Close()

		n, err := db.ClearGenerations()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", plural(int(n), "generation"))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of generations to show")
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	db, err := openHistory()
	if err != nil {
		return err
	}
	if db == nil {
		fmt.Fprintln(out, "History is disabled.")
		return nil
	}
	defer db.Close()

	gens, err := db.RecentGenerations(historyLimit)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		fmt.Fprintln(out, "No generations yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range gens {
		fmt.Fprintf(w, "%s\t%s\t%s\n", humanize.RelTime(g.Created(), now(), "ago", "from now"), g.Command, preview(g.Output, 60))
	}
	return w.Flush()
}

// preview returns the first line of s, cut to limit runes.
func preview(s string, limit int) string {
	line, _, _ := strings.Cut(s, "\n")
	r := []rune(line)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return line
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sinner-cli/sinner/internal/gitlog"
	"github.com/sinner-cli/sinner/internal/router"
)

var errNoCommits = errors.New("no commits found")

// commitFlags are shared by the commands that read commit history.
type commitFlags struct {
	count    int
	since    string
	useStdin bool
	repo     string
}

func (f *commitFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.count, "count", "c", gitlog.DefaultCount, "number of recent commits to analyze")
	cmd.Flags().StringVar(&f.since, "since", "", `only commits after this date ("2024-05-01", "2 weeks ago")`)
	cmd.Flags().BoolVar(&f.useStdin, "stdin", false, "read newline-separated commit subjects from stdin instead of git")
	cmd.Flags().StringVar(&f.repo, "repo", ".", "path inside the git repository to read")
}

// commits resolves the commit subjects for a comment-family command, joined
// by newlines.
func (f *commitFlags) commits(ctx context.Context) (string, error) {
	if f.useStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	since, err := gitlog.ParseSince(f.since, now())
	if err != nil {
		return "", err
	}
	repo, err := gitlog.Open(f.repo)
	if err != nil {
		return "", err
	}
	subjects, err := repo.Subjects(ctx, gitlog.Query{Count: f.count, Since: since})
	if err != nil {
		return "", err
	}
	if len(subjects) == 0 {
		return "", errNoCommits
	}
	return strings.Join(subjects, "\n"), nil
}

func printResult(cmd *cobra.Command, out string) {
	fmt.Fprintln(cmd.OutOrStdout(), out)
}

var (
	nameLanguage string
	commitScope  string

	commentFlags commitFlags
	commentSquash,
	commentMerge,
	commentCasual bool

	prFlags     commitFlags
	squashFlags commitFlags
)

var nameCmd = &cobra.Command{
	Use:   "name [context]",
	Short: "Suggest a name for a function, variable, class or constant",
	Example: `  sinner name "a function that validates email addresses"
  sinner name --language python "a class for user sessions"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := textInput(args)
		if err != nil {
			return err
		}
		out, err := generate(cmd.Context(), router.Name, input, optionsWith("language", nameLanguage))
		if err != nil {
			return err
		}
		printResult(cmd, out)
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit [changes]",
	Short: "Write a conventional commit message",
	Example: `  sinner commit "added input validation to the signup form"
  git diff --staged | sinner commit --scope auth`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := textInput(args)
		if err != nil {
			return err
		}
		out, err := generate(cmd.Context(), router.Commit, input, optionsWith("scope", commitScope))
		if err != nil {
			return err
		}
		printResult(cmd, out)
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:     "explain [content]",
	Short:   "Explain code or a technical concept",
	Example: `  sinner explain "what is a closure in Python?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := textInput(args)
		if err != nil {
			return err
		}
		out, err := generate(cmd.Context(), router.Explain, input, nil)
		if err != nil {
			return err
		}
		printResult(cmd, out)
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Describe recent commits for a merge request",
	Example: `  sinner comment --merge --count 10
  sinner comment --casual --since "2 weeks ago"
  sinner comment --squash`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		commits, err := commentFlags.commits(cmd.Context())
		if err != nil {
			return err
		}
		command := router.Comment
		opts := router.Options{}
		switch {
		case commentSquash:
			command = router.Squash
		case commentCasual:
			opts["casual"] = "true"
		}
		out, err := generate(cmd.Context(), command, commits, opts)
		if err != nil {
			return err
		}
		printResult(cmd, out)
		return nil
	},
}

var prCmd = &cobra.Command{
	Use:     "pr",
	Short:   "Write a PR title and bullet list from recent commits",
	Example: `  sinner pr --count 8`,
	Args:    cobra.NoArgs,
	RunE:    commitsRunE(&prFlags, router.PR),
}

var squashCmd = &cobra.Command{
	Use:     "squash",
	Short:   "Write one conventional commit message for squashed commits",
	Example: `  sinner squash --since 2024-05-01`,
	Args:    cobra.NoArgs,
	RunE:    commitsRunE(&squashFlags, router.Squash),
}

func commitsRunE(f *commitFlags, command router.Command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		commits, err := f.commits(cmd.Context())
		if err != nil {
			return err
		}
		out, err := generate(cmd.Context(), command, commits, nil)
		if err != nil {
			return err
		}
		printResult(cmd, out)
		return nil
	}
}

func optionsWith(key, value string) router.Options {
	if value == "" {
		return nil
	}
	return router.Options{key: value}
}

func addGenerateCommands(root *cobra.Command) {
	nameCmd.Flags().StringVarP(&nameLanguage, "language", "l", "", "target language (go, python, ...)")
	commitCmd.Flags().StringVarP(&commitScope, "scope", "s", "", "preferred conventional commit scope")

	commentFlags.register(commentCmd)
	commentCmd.Flags().BoolVar(&commentSquash, "squash", false, "write a squash merge commit message instead")
	commentCmd.Flags().BoolVar(&commentMerge, "merge", false, "write a merge request description (default)")
	commentCmd.Flags().BoolVar(&commentCasual, "casual", false, "write an informal catch-up summary")
	commentCmd.MarkFlagsMutuallyExclusive("squash", "merge")
	commentCmd.MarkFlagsMutuallyExclusive("squash", "casual")

	prFlags.register(prCmd)
	squashFlags.register(squashCmd)

	root.AddCommand(nameCmd, commitCmd, commentCmd, prCmd, squashCmd, explainCmd)
}

package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleAndBulletsPRExample(t *testing.T) {
	raw := "Login validation was fixed to handle expired tokens properly. Readme was updated with new setup instructions for the project."

	want := "Fixed issues and improved functionality\n\n" +
		"- Login validation was fixed to handle expired tokens properly\n" +
		"- Readme was updated with new setup instructions for the project"

	assert.Equal(t, want, TitleAndBullets(raw))
}

func TestTitleAndBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "banned phrase dropped",
			in:   "This PR includes several improvements. The login flow was reworked to use tokens.",
			want: "Updated project configuration\n\n- The login flow was reworked to use tokens",
		},
		{
			name: "numbered list",
			in:   "1. Added retry logic to the http client.\n2. Fixed a race in the worker pool.",
			want: "Updated documentation and configuration\n\n- Added retry logic to the http client\n- Fixed a race in the worker pool",
		},
		{
			name: "stray integers",
			in:   "1\nThe cache layer was rewritten for speed\n2\nError messages were made more descriptive",
			want: "Updated project configuration\n\n- The cache layer was rewritten for speed\n- Error messages were made more descriptive",
		},
		{
			name: "digit dash prefix",
			in:   "3- Feature branches were merged into main today",
			want: "Merged feature branches\n\n- Feature branches were merged into main today",
		},
		{
			name: "bold wrapper and emoji",
			in:   "**Summary**: The parser was rewritten to stream tokens 🚀.",
			want: "Updated project configuration\n\n- Summary: The parser was rewritten to stream tokens",
		},
		{
			name: "bullet glyphs",
			in:   "• Resolved the flaky integration test suite\n• Cleaned up unused helper functions",
			want: "Fixed issues and improved functionality\n\n- Resolved the flaky integration test suite\n- Cleaned up unused helper functions",
		},
		{
			name: "nothing survives falls back to cleaned text",
			in:   "Fixed bug. Updated docs 🎉.",
			want: "Fixed bug. Updated docs .",
		},
		{
			name: "this pull request filler only",
			in:   "This pull request makes many changes overall.",
			want: "This pull request makes many changes overall.",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleAndBullets(tt.in))
		})
	}
}

func TestTitleAndBulletsCustomConfig(t *testing.T) {
	f := New(Config{
		MinWords:      1,
		BannedPhrases: []string{"wip"},
		TitleRules:    []TitleRule{{Keywords: []string{"Parser"}, Title: "Parser work"}},
	})

	got := f.TitleAndBullets("Parser rewritten. WIP do not review. Docs tweaked.")
	assert.Equal(t, "Parser work\n\n- Parser rewritten\n- Docs tweaked", got)

	got = f.TitleAndBullets("Tests added for everything.")
	assert.Equal(t, DefaultConfig().DefaultTitle+"\n\n- Tests added for everything", got)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A thing. Another thing", []string{"A thing", "Another thing"}},
		{"e.g. lower case continues", []string{"e.g. lower case continues"}},
		{"Shipped v1.2 Release notes", []string{"Shipped v1.2 Release notes"}},
		{"End.", []string{"End."}},
		{"One.  Two.\tThree", []string{"One", "Two", "Three"}},
		{"", []string{""}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitSentences(tt.in), "input %q", tt.in)
	}
}

func TestTitleAndBulletsEmptyAfterClean(t *testing.T) {
	for _, in := range []string{"", "   \n\t ", "🎉🚀", " ✨ \n 👋 "} {
		assert.Equal(t, "", TitleAndBullets(in), "input %q", in)
	}
}

func TestTitleAndBulletsProperties(t *testing.T) {
	banned := DefaultConfig().BannedPhrases

	for _, in := range corpus(500) {
		got := TitleAndBullets(in)

		if Clean(in) != "" {
			require.NotEmpty(t, got, "empty output for %q", in)
		}
		for _, r := range got {
			require.False(t, IsEmoji(r), "emoji %U in output for %q", r, in)
		}

		// Clean never yields a blank line, so "\n\n" marks the bulleted shape.
		if !strings.Contains(got, "\n\n") {
			assert.Equal(t, Clean(in), got)
			continue
		}

		title, body, ok := strings.Cut(got, "\n\n")
		require.True(t, ok)
		require.NotEmpty(t, title)
		require.NotContains(t, title, "\n")

		for _, line := range strings.Split(body, "\n") {
			require.True(t, strings.HasPrefix(line, "- "), "line %q of %q", line, in)
			text := strings.TrimPrefix(line, "- ")
			assert.Greater(t, len(strings.Fields(text)), 3, "short bullet %q", line)
			for _, phrase := range banned {
				assert.NotContains(t, strings.ToLower(text), phrase)
			}
		}
	}
}

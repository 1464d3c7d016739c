// Package prompts renders the prompt sent to the model for each command.
//
// Every function is pure: the payload is embedded verbatim and the output
// depends on nothing else.
package prompts

import (
	"fmt"
	"strings"
)

// Payload is what a template renders from. Commits is set for the
// comment-family commands, Text for the rest.
type Payload struct {
	Text    string
	Commits []string
	Options map[string]string
}

func (p Payload) option(key string) string {
	if p.Options == nil {
		return ""
	}
	return strings.TrimSpace(p.Options[key])
}

// BulletList renders commits as "- subject" items separated by blank lines.
// No commits renders an empty block.
func BulletList(commits []string) string {
	items := make([]string, len(commits))
	for i, c := range commits {
		items[i] = "- " + c
	}
	return strings.Join(items, "\n\n")
}

// Name asks for a single identifier following language naming conventions.
func Name(p Payload) string {
	hint := ""
	if lang := p.option("language"); lang != "" {
		hint = fmt.Sprintf("\nTarget language: %s. Use its conventions instead of inferring one.\n", lang)
	}

	return fmt.Sprintf(`You are a senior software architect focused on clean naming conventions.

Context:
%s
%s
Provide a concise, meaningful, professional name following best practices:
- Use camelCase for functions/methods and variables (JavaScript, Java, etc.)
- Use snake_case for Python functions/variables
- Use PascalCase for classes in all languages
- Use UPPER_SNAKE_CASE for constants
- Be descriptive but not verbose
- Infer the language from context clues when possible
- Default to camelCase if language is ambiguous

Examples:
- "a function that validates emails" -> validateEmail (or validate_email for Python)
- "a class for user sessions" -> UserSession
- "maximum retry count constant" -> MAX_RETRY_COUNT
- "variable storing user authentication token" -> authToken (or auth_token for Python)

Respond with ONLY the suggested name. No explanations, no alternatives.`, p.Text, hint)
}

// Commit asks for a one-line conventional commit subject.
func Commit(p Payload) string {
	scope := "- Infer the best scope from context (e.g., ui, api, auth, home, db, config, tests)"
	if s := p.option("scope"); s != "" {
		scope = fmt.Sprintf("- Use %q as the scope unless it clearly does not fit", s)
	}

	return fmt.Sprintf(`You are a technical lead writing a git commit message.

User's description of changes:
%s

Create a commit message in this EXACT format:
type(scope) -> description

Rules:
- Silently fix any typos or grammar errors
%s
- Use imperative mood ("make" not "made", "add" not "added", "fix" not "fixed")
- Make description clear and professional
- Description starts with lowercase letter
- Keep total length under 72 characters
- Common types: feat, fix, refactor, docs, style, test, chore, perf

Examples:
- "made table resonsive on home screen" -> feat(home) -> make table responsive on home screen
- "fixed bug in login" -> fix(auth) -> resolve login validation error
- "updated readme" -> docs(readme) -> update installation instructions
- "refactored api endpoints" -> refactor(api) -> improve endpoint structure

Respond with ONLY the commit message. No explanations, no alternatives.`, p.Text, scope)
}

// Comment asks for a professional merge request description.
func Comment(p Payload) string {
	return fmt.Sprintf(`You are writing a merge/pull request description.

Recent commits:
%s

Write a clear, professional description for this merge request.
- Explain what changed and why
- Highlight key improvements or fixes
- 2-4 short paragraphs maximum
- No emojis, no markdown headers, no bullet points
- Professional tone

Respond with ONLY the description text. No preamble, no alternatives.`, BulletList(p.Commits))
}

// CasualComment asks for an informal catch-up summary of recent work.
func CasualComment(p Payload) string {
	return fmt.Sprintf(`Summarize these recent changes in a casual, detailed way. Talk to the developer like a friendly colleague catching them up on what's been happening.

Recent commits:
%s

Style:
- Start with a casual greeting like "Hey!" or "So,"
- Use passive voice (things "were added", "got updated", not "we added")
- Conversational and natural tone
- Technical but not formal
- 2-3 sentences max
- No emojis, no bullet points, just flowing prose

Respond with ONLY the summary. No preamble, no alternatives.`, BulletList(p.Commits))
}

// PR asks for prose that the PR normalizer reshapes into title and bullets.
// Each change should be its own sentence so it can become one bullet.
func PR(p Payload) string {
	return fmt.Sprintf(`You are writing the description of a pull request.

Commits:
%s

Describe what changed.
- One complete sentence per change, in past tense ("was added", "was fixed")
- Technical, simple, precise
- Professional tone, no filler, no emojis, no markdown
- 2-4 short paragraphs maximum
- Do not mention "this PR" or "this pull request"

Respond with ONLY the description sentences. No title, no preamble, no alternatives.`, BulletList(p.Commits))
}

// Squash asks for one conventional commit line summarizing several commits.
func Squash(p Payload) string {
	return fmt.Sprintf(`Create ONE commit message that summarizes all these commits together.

Commits to squash:
%s

Output format: type(scope) -> description

Rules:
- ONE line only
- Format: type(scope) -> description
- Imperative mood (add, fix, update)
- Description starts with lowercase letter
- Under 72 characters
- Capture the main change across all commits

Examples:
- feat(auth) -> add JWT authentication system
- docs(install) -> update setup instructions for venv and pipx
- refactor(core) -> improve prompt handling and formatting

Respond with ONLY the commit message. No explanations, no alternatives.`, BulletList(p.Commits))
}

// Explain asks for a short structured explanation of code or a concept.
func Explain(p Payload) string {
	return fmt.Sprintf(`You are a technical mentor explaining code or a concept clearly and concisely.

%s

Structure:
- Start with the core idea in one sentence
- Then explain the key logic or mechanics
- Mention notable patterns, pitfalls or best practices if relevant
- Use 2-3 short paragraphs maximum
- Be technical but accessible, avoid unnecessary jargon
- No emojis, no markdown

Respond with ONLY the explanation. No preamble.`, p.Text)
}

package format

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleRule maps keywords found in the first bullet to a fixed title.
type TitleRule struct {
	Keywords []string
	Title    string
}

// Config holds the tunables of the PR transform. The word threshold and the
// banned phrases have drifted between revisions, so they live here instead
// of in the code.
type Config struct {
	// MinWords discards segments with this many words or fewer.
	MinWords int
	// BannedPhrases discards segments containing any of them, case-insensitively.
	BannedPhrases []string
	// TitleRules are checked in order against the lower-cased first bullet.
	TitleRules []TitleRule
	// DefaultTitle is used when no rule matches.
	DefaultTitle string
}

// DefaultConfig returns the stock thresholds, phrases and title buckets.
func DefaultConfig() Config {
	return Config{
		MinWords:      3,
		BannedPhrases: []string{"includes several", "this pr", "this pull request"},
		TitleRules: []TitleRule{
			{Keywords: []string{"updated", "changed", "added"}, Title: "Updated documentation and configuration"},
			{Keywords: []string{"fixed", "resolved"}, Title: "Fixed issues and improved functionality"},
			{Keywords: []string{"merged"}, Title: "Merged feature branches"},
		},
		DefaultTitle: "Updated project configuration",
	}
}

// Formatter applies normalizer variants with a fixed Config. It carries no
// mutable state and is safe to share.
type Formatter struct {
	cfg Config
}

// New returns a Formatter using cfg. A zero DefaultTitle falls back to the
// stock one so the PR shape always has a title line.
func New(cfg Config) *Formatter {
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = DefaultConfig().DefaultTitle
	}
	if cfg.MinWords < 0 {
		cfg.MinWords = 0
	}
	return &Formatter{cfg: cfg}
}

// Default returns a Formatter with DefaultConfig.
func Default() *Formatter {
	return New(DefaultConfig())
}

// Config returns a copy of the formatter's configuration.
func (f *Formatter) Config() Config {
	return f.cfg
}

var (
	leadingMarker  = regexp.MustCompile(`^\s*(?:[-•*]|\d+\.)(?:\s+|$)`)
	residualMarker = regexp.MustCompile(`^(?:[-•*]\s*|\d+\.\s+)`)
	digitsOnly     = regexp.MustCompile(`^\d+$`)
	digitDash      = regexp.MustCompile(`^\d+-`)
)

// TitleAndBullets reshapes model prose into a title line, a blank line and a
// "- " bullet per surviving sentence, using DefaultConfig. It returns "" when
// raw is only whitespace or emoji.
func TitleAndBullets(raw string) string {
	return Default().TitleAndBullets(raw)
}

// TitleAndBullets reshapes model prose into
//
//	<title>
//
//	- <sentence>
//	- <sentence>
//
// Sentences are split on newlines and on ". " followed by an upper-case
// letter, filtered by the Config thresholds and kept in order of appearance.
// When nothing survives the filters the cleaned text is returned unbulleted.
// Input that cleans to nothing (only whitespace or emoji) yields "".
//
// The title is a keyword bucket picked from the first bullet. It is a coarse
// heuristic, not a summary.
func (f *Formatter) TitleAndBullets(raw string) string {
	cleaned := Clean(raw)
	if cleaned == "" {
		return cleaned
	}

	text := leadingMarker.ReplaceAllString(cleaned, "")
	text = stripWrappers(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if digitsOnly.MatchString(line) {
			continue
		}
		lines = append(lines, digitDash.ReplaceAllString(line, "-"))
	}

	var bullets []string
	for _, line := range lines {
		for _, seg := range SplitSentences(line) {
			if b, ok := f.bullet(seg); ok {
				bullets = append(bullets, "- "+b)
			}
		}
	}
	if len(bullets) == 0 {
		return cleaned
	}

	return f.title(bullets[0]) + "\n\n" + strings.Join(bullets, "\n")
}

// bullet applies the per-segment cleanup and filters. ok is false when the
// segment must not become a bullet.
func (f *Formatter) bullet(seg string) (string, bool) {
	seg = strings.TrimSpace(seg)
	seg = strings.TrimSpace(residualMarker.ReplaceAllString(seg, ""))
	if digitsOnly.MatchString(seg) {
		return "", false
	}
	seg = strings.TrimSpace(strings.TrimRight(seg, "."))
	if seg == "" {
		return "", false
	}
	if len(strings.Fields(seg)) <= f.cfg.MinWords {
		return "", false
	}
	lower := strings.ToLower(seg)
	for _, phrase := range f.cfg.BannedPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return "", false
		}
	}
	return seg, true
}

func (f *Formatter) title(firstBullet string) string {
	lower := strings.ToLower(strings.TrimPrefix(firstBullet, "- "))
	for _, rule := range f.cfg.TitleRules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Title
			}
		}
	}
	return f.cfg.DefaultTitle
}

// SplitSentences splits s at every period followed by whitespace and an
// upper-case letter. The period and whitespace are dropped; the letter
// starts the next segment.
func SplitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j == i+1 || j >= len(s) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(s[j:])
		if !unicode.IsUpper(r) {
			continue
		}
		out = append(out, s[start:i])
		start = j
		i = j - 1
	}
	return append(out, s[start:])
}

// Package format turns raw model output into paste-ready text.
//
// Everything here is a pure string transform. Nothing returns an error: on
// input the heuristics do not understand, the functions fall back to the
// least-processed safe string (the cleaned raw text).
package format

import (
	"regexp"
	"strings"
	"unicode"
)

// emoji covers the Unicode blocks models use for decoration. Removal is by
// block, not by a list of known glyphs.
var emoji = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero width joiner
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // misc symbols, dingbats
		{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1}, // variation selector-16
	},
	R32: []unicode.Range32{
		{Lo: 0x1f1e6, Hi: 0x1f1ff, Stride: 1}, // regional indicators
		{Lo: 0x1f300, Hi: 0x1f64f, Stride: 1}, // pictographs, emoticons
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1}, // transport and map
		{Lo: 0x1f700, Hi: 0x1faff, Stride: 1}, // alchemical through symbols and pictographs ext-A
	},
}

var (
	boldPair = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	// __x__ only when x has a space in it, so __init__ and __name__ survive.
	dunderPair = regexp.MustCompile(`__([^_\s][^_\n]*\s[^_\n]*[^_\s])__`)
	// *x* only when both asterisks hug the enclosed text, so a * b and
	// *ptr survive.
	italicStar = regexp.MustCompile(`(^|[^*\w])\*([^*\s](?:[^*\n]*[^*\s])?)\*($|[^*\w])`)
	// _x_ only when the underscores sit on word boundaries, so snake_case
	// and UPPER_SNAKE identifiers survive.
	italicUnderscore = regexp.MustCompile(`(^|[\s(\[{"'])_([^_\s](?:[^_\n]*[^_\s])?)_($|[\s.,;:!?)\]}"'])`)
)

// IsEmoji reports whether r falls in one of the stripped emoji blocks.
func IsEmoji(r rune) bool {
	return unicode.Is(emoji, r)
}

// Clean removes emoji and markdown emphasis, trims every line and drops
// blank lines. Line breaks between paragraphs are kept.
func Clean(raw string) string {
	return fixpoint(raw, cleanLinesOnce)
}

// CleanLine is Clean for single-statement output: all whitespace, newlines
// included, collapses to single spaces.
func CleanLine(raw string) string {
	return fixpoint(raw, func(s string) string {
		return strings.Join(strings.Fields(cleanLinesOnce(s)), " ")
	})
}

// fixpoint applies step until the output stops changing. Every step only
// deletes characters or normalizes whitespace, so this terminates, and it
// makes Clean(Clean(x)) == Clean(x) hold by construction.
func fixpoint(s string, step func(string) string) string {
	for {
		next := step(s)
		if next == s {
			return next
		}
		s = next
	}
}

func cleanLinesOnce(s string) string {
	s = stripEmoji(s)
	s = stripMarkdown(s)

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if IsEmoji(r) {
			return -1
		}
		return r
	}, s)
}

func stripMarkdown(s string) string {
	s = strings.ReplaceAll(s, "***", "")
	s = stripWrappers(s)
	s = italicStar.ReplaceAllString(s, "$1$2$3")
	s = strings.ReplaceAll(s, "`", "")
	return italicUnderscore.ReplaceAllString(s, "$1$2$3")
}

// stripWrappers removes **x** and __x__ wrappers, keeping x.
func stripWrappers(s string) string {
	s = boldPair.ReplaceAllString(s, "$1")
	return dunderPair.ReplaceAllString(s, "$1")
}

package format

import "fmt"

// Shape selects which normalizer a command's output goes through.
type Shape int

const (
	// ShapeLine collapses output to one line (names, commit subjects).
	ShapeLine Shape = iota
	// ShapeText keeps paragraph line breaks (comments, explanations).
	ShapeText
	// ShapeTitleBullets produces a title plus bullet list (PR descriptions).
	ShapeTitleBullets
)

func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeText:
		return "text"
	case ShapeTitleBullets:
		return "title+bullets"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Apply runs raw through the normalizer for shape. Unknown shapes get the
// line-preserving Clean.
func (f *Formatter) Apply(shape Shape, raw string) string {
	switch shape {
	case ShapeLine:
		return CleanLine(raw)
	case ShapeTitleBullets:
		return f.TitleAndBullets(raw)
	default:
		return Clean(raw)
	}
}

package imaging

import "strings"

// lineHeightProbe is measured to get the height of a single line.
const lineHeightProbe = "A"

// Block holds the geometry of a wrapped paragraph.
type Block struct {
	LongestLineWidth int
	LineHeight       int
	TotalHeight      int
}

// LineAdvance is the distance between the tops of consecutive lines: the
// line height plus half of it as spacing.
func (b Block) LineAdvance() int {
	return b.LineHeight + b.LineHeight/2
}

// Wrap greedily fills lines with space separated words while their measured
// width stays within maxWidth. A word that is wider than maxWidth on its own
// is kept whole on its own line. Runs of spaces collapse.
func Wrap(text string, f Font, maxWidth int) []string {
	words := strings.Split(text, " ")
	lines := make([]string, 0, 1)
	current := ""

	for _, word := range words {
		if word == "" {
			continue
		}
		candidate := strings.TrimSpace(current + " " + word)
		if f.Bounds(candidate).Width() <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	return append(lines, current)
}

// MeasureBlock computes the geometry of lines drawn with f.
func MeasureBlock(lines []string, f Font) Block {
	lineHeight := f.Bounds(lineHeightProbe).Height()
	block := Block{LineHeight: lineHeight}
	for _, line := range lines {
		if w := f.Bounds(line).Width(); w > block.LongestLineWidth {
			block.LongestLineWidth = w
		}
	}
	block.TotalHeight = block.LineAdvance() * len(lines)
	return block
}

// Package blocks segments a Markdown document into blank-line separated blocks
// and classifies each block's structural type.
package blocks

import (
	"strconv"
	"strings"
)

// Type is the structural type of a block.
type Type int

const (
	Paragraph Type = iota
	Heading
	Code
	Quote
	UnorderedList
	OrderedList
)

func (t Type) String() string {
	switch t {
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case Code:
		return "code"
	case Quote:
		return "quote"
	case UnorderedList:
		return "unordered_list"
	case OrderedList:
		return "ordered_list"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Fence opens and closes a code block.
const Fence = "```"

// MaxHeadingLevel is the deepest heading the dialect knows.
const MaxHeadingLevel = 6

// Split splits doc on blank lines, trims every piece and drops empty ones.
// Carriage returns from CRLF line endings are removed first.
func Split(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")

	var out []string
	for rest := doc; ; {
		idx := strings.Index(rest, "\n\n")
		piece := rest
		if idx >= 0 {
			piece = rest[:idx]
		}
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			out = append(out, trimmed)
		}
		if idx < 0 {
			return out
		}
		rest = rest[idx+2:]
	}
}

// Classify returns the type of a single block. Rules are tried in order:
// heading, code, quote, unordered list, ordered list; anything else is a paragraph.
func Classify(block string) Type {
	switch {
	case HeadingLevel(block) > 0:
		return Heading
	case isCode(block):
		return Code
	case everyLine(block, func(_ int, line string) bool { return strings.HasPrefix(line, ">") }):
		return Quote
	case everyLine(block, func(_ int, line string) bool { return strings.HasPrefix(line, "- ") }):
		return UnorderedList
	case everyLine(block, func(i int, line string) bool { return strings.HasPrefix(line, orderedMarker(i+1)) }):
		return OrderedList
	default:
		return Paragraph
	}
}

// HeadingLevel returns the heading level of block, or 0 when block is not a heading.
// A heading is 1-6 `#`, a space, and at least one more character.
func HeadingLevel(block string) int {
	level := 0
	for level < len(block) && block[level] == '#' {
		level++
	}
	if level == 0 || level > MaxHeadingLevel {
		return 0
	}
	if len(block) < level+2 || block[level] != ' ' {
		return 0
	}
	return level
}

// OrderedMarkerWidth returns the byte width of the `N. ` marker at the start of line,
// or 0 when the line has none.
func OrderedMarkerWidth(line string) int {
	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits == 0 || !strings.HasPrefix(line[digits:], ". ") {
		return 0
	}
	return digits + 2
}

// Lines splits a block into its lines.
func Lines(block string) []string {
	return strings.Split(block, "\n")
}

func orderedMarker(n int) string {
	return strconv.Itoa(n) + ". "
}

func isCode(block string) bool {
	return strings.HasPrefix(block, Fence) && strings.HasSuffix(block, Fence)
}

func everyLine(block string, pred func(i int, line string) bool) bool {
	for i, line := range Lines(block) {
		if !pred(i, line) {
			return false
		}
	}
	return true
}

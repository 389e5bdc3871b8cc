package common

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Wrap word-wraps s to width cells, hard-breaking words that do not fit.
// A non-positive width returns s unchanged.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wrap(s, width, "")
}

// Truncate shortens s to width cells with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// Indent prefixes every line of s.
func Indent(s, prefix string) string {
	if prefix == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = prefix + ln
	}
	return strings.Join(lines, "\n")
}

// Window returns the blocks that fit into height lines while keeping the
// block at cursor visible. Blocks before the cursor are dropped first.
func Window(blocks []string, cursor, height int) []string {
	if height <= 0 || len(blocks) == 0 {
		return blocks
	}
	cursor = max(0, min(cursor, len(blocks)-1))
	lines := func(s string) int { return strings.Count(s, "\n") + 1 }

	start := cursor
	used := lines(blocks[cursor])
	for start > 0 && used+lines(blocks[start-1]) <= height/2 {
		start--
		used += lines(blocks[start])
	}
	end := cursor + 1
	for end < len(blocks) && used+lines(blocks[end]) <= height {
		used += lines(blocks[end])
		end++
	}
	for start > 0 && used+lines(blocks[start-1]) <= height {
		start--
		used += lines(blocks[start])
	}
	return blocks[start:end]
}

package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// TextIndent is the plain-text indent per tree level.
const TextIndent = "  "

// Text serializes the tree as indented plain text, one block per comment.
func Text(nodes []Node, now time.Time) string {
	var b strings.Builder
	Walk(nodes, func(n Node) {
		pad := strings.Repeat(TextIndent, n.Depth)
		fmt.Fprintf(&b, "%s> %s | %s | %+d [%s]\n", pad, StripControl(n.Author), RelativeTime(n.CreatedAt, now), n.Score, n.CommentID)
		for ln := range strings.SplitSeq(StripControl(n.Content), "\n") {
			b.WriteString(pad + TextIndent + ln + "\n")
		}
		if n.ReplyOpen {
			b.WriteString(pad + TextIndent + "[reply open]\n")
		}
	})
	return b.String()
}

// StripControl removes terminal escape sequences and control characters,
// keeping newlines and tabs.
func StripControl(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// RelativeTime formats t relative to now the way the feed shows ages.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "just now"
	}
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))
	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

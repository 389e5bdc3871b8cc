package feed

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/render"
	"github.com/CrestNiraj12/molterm/tui/common"
)

func (m Model) renderDetail() string {
	if m.detail == nil {
		if s, ok := m.loadingOrError("post"); ok {
			return s
		}
		return "  No post selected."
	}

	nodes := m.nodes()
	blocks := make([]string, 0, len(nodes)+1)
	blocks = append(blocks, m.renderPost(m.detail.Post))
	for i, n := range nodes {
		blocks = append(blocks, m.renderComment(n, m.detailCursor == i+1))
	}

	out := strings.Join(common.Window(blocks, m.detailCursor, m.bodyHeight()), "\n")
	if m.loading {
		out += "\n  " + m.spinner.View()
	}
	return out
}

func (m Model) renderPost(p domain.Post) string {
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(common.SubmoltStyle.Render("m/"+p.SubmoltLabel()) + "  ")
	b.WriteString(common.AuthorStyle.Render(p.AuthorName()))
	if p.IsOwnedBy(m.session.CurrentUserName()) {
		b.WriteString(" " + common.OwnBadgeStyle.Render("(you)"))
	}
	b.WriteString(common.TimestampStyle.Render(" · "+render.RelativeTime(p.CreatedAt, m.now())) + "\n\n")
	b.WriteString(common.TitleStyle.Render(common.Wrap(p.Title, width-4)) + "\n\n")
	if p.URL != "" {
		b.WriteString(common.LinkStyle.Render(p.URL) + "\n\n")
	}
	if p.Content != "" {
		b.WriteString(common.ContentStyle.Render(common.Wrap(p.Content, width-4)) + "\n\n")
	}
	b.WriteString(common.ScoreStyle.Render(fmt.Sprintf("▲ %d", p.Score())))
	b.WriteString(common.TimestampStyle.Render(fmt.Sprintf("  (+%d / -%d)", p.Upvotes, p.Downvotes)))

	style := common.UnselectedStyle
	if m.detailCursor == 0 {
		style = common.SelectedStyle
	}
	out := style.Width(width).Render(b.String())

	if m.commentOpen {
		out += "\n" + m.renderForm("", 0)
	}
	out += "\n\n" + common.TitleStyle.Render(fmt.Sprintf("  Comments (%d)", render.Count(render.Build(m.detail.Comments, p.ID, m.replies))))
	if len(m.detail.Comments) == 0 {
		out += "\n" + common.TimestampStyle.Render("  No comments yet. Press c to start the conversation.")
	}
	return out
}

// renderComment draws one node with a guide rule per nesting level, and its
// reply form when open.
func (m Model) renderComment(n render.Node, selected bool) string {
	guide := strings.Repeat(common.GuideStyle.Render("│ "), n.Depth)
	width := max(20, m.contentWidth()-2*n.Depth-4)

	marker := "  "
	if selected {
		marker = common.CursorStyle.Render("▸ ")
	}
	head := common.AuthorStyle.Render(n.Author)
	if n.Author == m.session.CurrentUserName() {
		head += " " + common.OwnBadgeStyle.Render("(you)")
	}
	head += common.TimestampStyle.Render(" · "+render.RelativeTime(n.CreatedAt, m.now())) +
		"  " + common.ScoreStyle.Render(fmt.Sprintf("▲ %d", n.Score))

	body := common.ContentStyle.Render(common.Wrap(n.Content, width))
	lines := []string{marker + head}
	for _, ln := range strings.Split(body, "\n") {
		lines = append(lines, "  "+ln)
	}

	out := common.Indent(strings.Join(lines, "\n"), guide)
	if n.ReplyOpen {
		out += "\n" + m.renderForm(n.CommentID, n.Depth+1)
	}
	return out
}

// renderForm draws the comment box for parent (empty for a top-level
// comment). Only the focused form shows the live input.
func (m Model) renderForm(parent domain.ID, depth int) string {
	var b strings.Builder
	label := "Add a comment"
	if parent != "" {
		label = "Reply"
	}
	b.WriteString(common.TimestampStyle.Render(label) + "\n")
	if m.typing && m.inputFor == parent {
		b.WriteString(m.input.View())
	} else if d := m.drafts[parent]; d != "" {
		b.WriteString(common.ContentStyle.Render(common.Truncate(d, m.contentWidth()-8)))
	} else {
		b.WriteString(common.TimestampStyle.Render("> Your comment..."))
	}
	if label := m.session.Cooldowns().Label(cooldown.Comment); label != "" {
		b.WriteString("\n" + common.CooldownStyle.Render(label) + common.TimestampStyle.Render("  (submit disabled)"))
	} else if m.submitting && m.inputFor == parent {
		b.WriteString("\n" + common.TimestampStyle.Render("Sending..."))
	}
	box := common.ReplyBoxStyle.Render(b.String())
	return common.Indent(box, strings.Repeat(common.GuideStyle.Render("│ "), depth)+"  ")
}

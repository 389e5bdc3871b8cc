package feed

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/molterm/app"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/render"
	"github.com/CrestNiraj12/molterm/tui/common"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeLines is what the root header and the help line take.
	chromeLines = 7
)

// View renders the active browsing view. The root draws the app header.
func (m Model) View() string {
	var body string
	switch m.view {
	case app.ViewPostDetail:
		body = m.renderDetail()
	case app.ViewProfile:
		body = m.renderProfile()
	default:
		body = m.renderFeed()
	}

	var b strings.Builder
	b.WriteString(body)
	if m.confirmDelete {
		b.WriteString("\n" + common.ConfirmStyle.Render("  Delete this post? "+common.HelpLine(m.keys.Confirm, m.keys.Cancel)))
	}
	b.WriteString("\n" + common.StatusBarStyle.Render("  "+m.helpLine()))
	return b.String()
}

func (m Model) contentWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	return max(30, min(w-6, 100))
}

func (m Model) bodyHeight() int {
	h := m.height
	if h <= 0 {
		h = defaultHeight
	}
	return max(6, h-chromeLines)
}

// loadingOrError renders the placeholder shown while a view has no data.
func (m Model) loadingOrError(what string) (string, bool) {
	if m.loading {
		return fmt.Sprintf("  %s Loading %s...", m.spinner.View(), what), true
	}
	if m.err != nil {
		return "  " + common.ErrorStyle.Render(domain.UserMessage(m.err, "Failed to load "+what)) +
			"\n  " + common.TimestampStyle.Render("ctrl+r to retry"), true
	}
	return "", false
}

func (m Model) renderFeed() string {
	var b strings.Builder
	b.WriteString(common.TitleStyle.Render("  Feed") + common.TimestampStyle.Render("  sorted by "+m.sort) + "\n\n")

	if len(m.posts) == 0 {
		if s, ok := m.loadingOrError("feed"); ok {
			return b.String() + s
		}
		return b.String() + common.TimestampStyle.Render("  No posts yet.")
	}

	blocks := make([]string, len(m.posts))
	for i, p := range m.posts {
		blocks[i] = m.renderCard(p, i == m.cursor)
	}
	b.WriteString(strings.Join(common.Window(blocks, m.cursor, m.bodyHeight()), "\n"))
	if m.loading {
		b.WriteString("\n  " + m.spinner.View())
	}
	return b.String()
}

// renderCard draws one post in a list: score, title, community, author,
// age and comment count.
func (m Model) renderCard(p domain.Post, selected bool) string {
	width := m.contentWidth()
	style := common.UnselectedStyle
	if selected {
		style = common.SelectedStyle
	}

	title := common.TitleStyle.Render(common.Truncate(p.Title, width-12))
	if p.IsOwnedBy(m.session.CurrentUserName()) {
		title += " " + common.OwnBadgeStyle.Render("(you)")
	}
	meta := strings.Join([]string{
		common.SubmoltStyle.Render("m/" + p.SubmoltLabel()),
		common.AuthorStyle.Render(p.AuthorName()),
		common.TimestampStyle.Render(render.RelativeTime(p.CreatedAt, m.now())),
		common.TimestampStyle.Render(fmt.Sprintf("💬 %d", p.CommentCount)),
	}, common.TimestampStyle.Render(" · "))

	score := common.ScoreStyle.Render(fmt.Sprintf("▲ %d", p.Score()))
	card := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(8).Render(score),
		title+"\n"+meta,
	)
	return style.Width(width).Render(card)
}

func (m Model) helpLine() string {
	k := m.keys
	if m.typing {
		return common.HelpLine(k.Submit, k.Back)
	}
	switch m.view {
	case app.ViewPostDetail:
		return common.HelpLine(k.Up, k.Down, k.Upvote, k.Downvote, k.Comment, k.Reply, k.Author, k.Delete, k.Back, k.Refresh)
	case app.ViewProfile:
		return common.HelpLine(k.Up, k.Down, k.Open, k.Upvote, k.Downvote, k.Back, k.Refresh)
	default:
		bindings := []key.Binding{k.Up, k.Down, k.Open, k.Upvote, k.Downvote, k.Sort, k.NewEditor, k.NewInline, k.MyProfile, k.Logout, k.Quit}
		return common.HelpLine(bindings...)
	}
}

package feed

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/molterm/tui/common"
)

func (m Model) renderProfile() string {
	if m.profile == nil {
		if s, ok := m.loadingOrError("profile"); ok {
			return s
		}
		return "  No profile loaded."
	}
	a := m.profile.Agent

	var info strings.Builder
	name := common.AuthorStyle.Render(a.DisplayName())
	if m.profile.Own {
		name += " " + common.OwnBadgeStyle.Render("(you)")
	}
	info.WriteString(name + "\n")
	if a.Description != "" {
		info.WriteString(common.ContentStyle.Render(common.Wrap(a.Description, m.contentWidth()-4)) + "\n")
	}
	info.WriteString("\n" + common.TimestampStyle.Render("Karma   ") + common.ScoreStyle.Render(fmt.Sprintf("%d", a.Karma)) + "\n")
	status := common.ErrorStyle.Render("⚠ Pending claim")
	if a.IsClaimed {
		status = common.SuccessStyle.Render("✓ Claimed")
	}
	info.WriteString(common.TimestampStyle.Render("Status  ") + status + "\n")
	if !a.CreatedAt.IsZero() {
		info.WriteString(common.TimestampStyle.Render("Joined  ") + a.CreatedAt.Format("Jan 02, 2006") + "\n")
	}
	owner := a.OwnerLabel()
	if a.Owner.XHandle != "" {
		owner += common.TimestampStyle.Render(" (@" + a.Owner.XHandle + ")")
	}
	info.WriteString(common.TimestampStyle.Render("Owner   ") + owner)

	header := common.UnselectedStyle.Width(m.contentWidth()).Render(info.String())

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(common.TitleStyle.Render("  RECENT POSTS") + "\n")

	if len(m.profile.Posts) == 0 {
		b.WriteString(common.TimestampStyle.Render("  No posts yet."))
		return b.String()
	}
	blocks := make([]string, len(m.profile.Posts))
	for i, p := range m.profile.Posts {
		blocks[i] = m.renderCard(p, i == m.profileCursor)
	}
	height := max(4, m.bodyHeight()-strings.Count(header, "\n")-3)
	b.WriteString(strings.Join(common.Window(blocks, m.profileCursor, height), "\n"))
	return b.String()
}

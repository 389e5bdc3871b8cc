package compose

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/molterm/cooldown"
	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/tui/common"
)

// View renders the compose view based on the active mode.
func (m Model) View() string {
	switch m.mode {
	case editorMode:
		out := m.status + "\n"
		if m.err != "" {
			out += common.ErrorStyle.Render(m.err) + "\n"
		}
		return out

	case inlineMode:
		var b strings.Builder
		b.WriteString(common.AppTitleStyle.Render(domain.AppName))
		b.WriteString("  New Post\n\n")
		b.WriteString("  Submolt  " + m.submolt.View() + "\n")
		b.WriteString("  Title    " + m.title.View() + "\n\n")
		b.WriteString(m.content.View())
		b.WriteString("\n")

		if label := m.session.Cooldowns().Label(cooldown.Post); label != "" {
			b.WriteString("\n" + common.CooldownStyle.Render(label) + "  (submit disabled)\n")
		}
		if m.err != "" {
			b.WriteString("\n" + common.ErrorStyle.Render(m.err) + "\n")
		}

		if m.status != "" {
			b.WriteString(common.StatusBarStyle.Render(m.status))
		} else {
			b.WriteString(common.StatusBarStyle.Render(
				fmt.Sprintf("  ctrl+d: post • tab: next field • esc: cancel • %d/%d chars",
					len(m.content.Value()), contentLimit),
			))
		}
		return b.String()
	}

	return ""
}

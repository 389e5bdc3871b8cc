package login

import (
	"strings"

	"github.com/CrestNiraj12/molterm/domain"
	"github.com/CrestNiraj12/molterm/tui/common"
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// View renders the login screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render(domain.AppName))
	b.WriteString("\n")
	b.WriteString(common.TimestampStyle.Render("  the social network for AI agents"))
	b.WriteString("\n\n")

	switch m.step {
	case chooseStep:
		b.WriteString("  > [k] Log in with an API key\n")
		b.WriteString("  > [n] Create a new agent\n")
		b.WriteString(common.StatusBarStyle.Render("  q: quit"))

	case keyStep:
		b.WriteString("  API key\n  ")
		b.WriteString(m.apiKey.View())
		b.WriteString(common.StatusBarStyle.Render("  enter: log in • esc: back"))

	case registerStep:
		b.WriteString("  Agent name\n  ")
		b.WriteString(m.name.View())
		b.WriteString("\n\n  Description\n  ")
		b.WriteString(m.desc.View())
		b.WriteString(common.StatusBarStyle.Render("  enter: register • tab: next field • esc: back"))

	case resultStep:
		b.WriteString(common.SuccessStyle.Render("  Agent created!"))
		b.WriteString("\n\n")
		b.WriteString("  > API key:           " + orNA(m.reg.APIKey) + "\n")
		b.WriteString("  > Claim URL:         " + common.LinkStyle.Render(orNA(m.reg.ClaimURL)) + "\n")
		b.WriteString("  > Verification code: " + orNA(m.reg.VerificationCode) + "\n\n")
		b.WriteString(common.TimestampStyle.Render("  Save your API key. Your human claims the agent at the URL above."))
		b.WriteString(common.StatusBarStyle.Render("  enter: continue"))
	}

	if m.busy {
		b.WriteString("\n\n  Loading...")
	}
	if m.err != "" {
		b.WriteString("\n\n  " + common.ErrorStyle.Render(m.err))
	}
	return b.String()
}

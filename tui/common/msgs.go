package common

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/molterm/cooldown"
)

// NoticeMsg asks the root model to show a transient notification.
type NoticeMsg struct {
	Text    string
	IsError bool
}

// Notice wraps a NoticeMsg into a tea.Cmd.
func Notice(text string, isError bool) tea.Cmd {
	if text == "" {
		return nil
	}
	return func() tea.Msg { return NoticeMsg{Text: text, IsError: isError} }
}

// AuthFailedMsg reports a rejected API key; the root logs out.
type AuthFailedMsg struct{}

// CooldownTickMsg is one step of a cooldown refresh chain. Gen ties it to
// the record call that started the chain.
type CooldownTickMsg struct {
	Kind cooldown.Kind
	Gen  uint64
}

// CooldownReadyMsg is delivered once when a cooldown ends.
type CooldownReadyMsg struct {
	Kind cooldown.Kind
}

// SortChangedMsg reports a new feed sort so the root can persist it.
type SortChangedMsg struct {
	Sort string
}

// ScheduleCooldown turns a tracker tick into the next CooldownTickMsg, or
// nil when the chain has nothing left to refresh.
func ScheduleCooldown(kind cooldown.Kind, t cooldown.Tick) tea.Cmd {
	switch t.Signal {
	case cooldown.SignalRefresh:
		return tea.Tick(t.Next, func(time.Time) tea.Msg {
			return CooldownTickMsg{Kind: kind, Gen: t.Gen}
		})
	case cooldown.SignalReady:
		return func() tea.Msg { return CooldownReadyMsg{Kind: kind} }
	default:
		return nil
	}
}

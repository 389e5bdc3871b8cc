package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit      key.Binding
	Refresh   key.Binding // ctrl+r
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding // enter: open post / focus reply form
	Back      key.Binding // esc
	Upvote    key.Binding // +
	Downvote  key.Binding // -
	Delete    key.Binding // x, own posts only
	Comment   key.Binding // c: top-level comment
	Reply     key.Binding // r: toggle reply form on the selected comment
	Submit    key.Binding // ctrl+d
	Author    key.Binding // a: author profile
	MyProfile key.Binding // m: own profile
	Sort      key.Binding // s: cycle feed sort
	NewEditor key.Binding // p: post via $EDITOR
	NewInline key.Binding // P: post via inline form
	NextField key.Binding // tab
	Logout    key.Binding // L
	Confirm   key.Binding // y
	Cancel    key.Binding // n
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Upvote: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "upvote"),
		),
		Downvote: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "downvote"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "submit"),
		),
		Author: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "author"),
		),
		MyProfile: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "my profile"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		NewEditor: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "post ($EDITOR)"),
		),
		NewInline: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "post (inline)"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
	}
}

// HelpLine renders " • "-separated help for the given bindings.
func HelpLine(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += " • "
		}
		out += h.Key + ": " + h.Desc
	}
	return out
}

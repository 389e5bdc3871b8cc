package common

import "github.com/charmbracelet/lipgloss"

const (
	accent = lipgloss.Color("#FF6600")
	muted  = lipgloss.Color("#6E738D")
	green  = lipgloss.Color("#A6DA95")
	red    = lipgloss.Color("#ED8796")
	blue   = lipgloss.Color("#7DC4E4")
	text   = lipgloss.Color("#CAD3F5")
)

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(1, 2, 0, 1)

	// UserLabelStyle styles the "name | key" header label.
	UserLabelStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	// SubmoltStyle styles the community tag on posts.
	SubmoltStyle = lipgloss.NewStyle().
			Foreground(green)

	// TitleStyle styles post titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text)

	// AuthorStyle styles author names.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(blue)

	// TimestampStyle styles timestamps and other metadata.
	TimestampStyle = lipgloss.NewStyle().
			Foreground(muted)

	// ContentStyle styles post and comment text.
	ContentStyle = lipgloss.NewStyle().
			Foreground(text)

	// LinkStyle styles link post URLs.
	LinkStyle = lipgloss.NewStyle().
			Foreground(blue).
			Underline(true)

	// ScoreStyle styles vote counts.
	ScoreStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	// GuideStyle draws the vertical rule in front of nested comments.
	GuideStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#45475A"))

	// SelectedStyle highlights the selected post.
	SelectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	// UnselectedStyle gives unselected posts a subtle border.
	UnselectedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// CursorStyle marks the selected comment.
	CursorStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	// OwnBadgeStyle highlights posts that belong to the user.
	OwnBadgeStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			MarginLeft(1)

	// ReplyBoxStyle frames an open reply form.
	ReplyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(1)

	// CooldownStyle styles the countdown next to a disabled submit.
	CooldownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EED49F"))

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(1, 0, 0, 0)

	// ConfirmStyle styles the delete confirmation prompt.
	ConfirmStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true).
			Padding(0, 1)

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	// SuccessStyle styles success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)
)

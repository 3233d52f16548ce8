package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/trinote/internal/model"
	tsync "github.com/existflow/trinote/internal/sync"
)

// Color palette
var (
	// Group colors
	GroupBigColor    = lipgloss.Color("#FF6B6B") // Red
	GroupMiddleColor = lipgloss.Color("#FFB347") // Orange
	GroupTodayColor  = lipgloss.Color("#4ECDC4") // Blue

	// Status colors
	Completed   = lipgloss.Color("#95E1A3") // Green
	SyncOK      = lipgloss.Color("#95E1A3") // Green
	SyncPending = lipgloss.Color("#FFE66D") // Yellow
	SyncError   = lipgloss.Color("#FF6B6B") // Red
	Offline     = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Columns
	ColumnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ColumnFocusedStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	// Task item
	TaskItemStyle = lipgloss.NewStyle()

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// GroupColor returns the accent color of a bucket
func GroupColor(g model.Group) lipgloss.Color {
	switch g {
	case model.GroupBig:
		return GroupBigColor
	case model.GroupMiddle:
		return GroupMiddleColor
	default:
		return GroupTodayColor
	}
}

// FormatStatus returns the colored sync status label
func FormatStatus(st tsync.Status) string {
	var c lipgloss.Color
	switch st {
	case tsync.StatusIdle:
		c = SyncOK
	case tsync.StatusPulling, tsync.StatusPushing:
		c = SyncPending
	case tsync.StatusError:
		c = SyncError
	default:
		c = Offline
	}
	return lipgloss.NewStyle().Foreground(c).Render("● " + st.String())
}

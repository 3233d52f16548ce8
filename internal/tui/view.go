package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	tsync "github.com/existflow/trinote/internal/sync"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)

	var mainContent string
	switch m.mode {
	case ModeAddTask, ModeEditTask, ModeSetKey, ModeConfirmDelete:
		mainContent = lipgloss.Place(
			m.width, bodyHeight,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	case ModeHelp:
		mainContent = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderHelp())
	default:
		mainContent = m.renderColumns(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, statusBar)
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("trinote")
	now := HelpStyle.Render(time.Now().Format("15:04:05"))

	filter := ""
	if m.hideDone {
		filter = HelpStyle.Render("  (done hidden)")
	}
	return HeaderStyle.Render(title + "  " + now + filter)
}

func (m Model) renderColumns(height int) string {
	n := len(m.groups)
	// Each column carries a border and padding of 4 cells
	colWidth := m.width/n - 4
	if colWidth < 10 {
		colWidth = 10
	}
	innerHeight := height - 2
	if innerHeight < 3 {
		innerHeight = 3
	}

	cols := make([]string, n)
	for i, g := range m.groups {
		var s strings.Builder

		heading := fmt.Sprintf("%s (%d)", g.Label(), m.counts[g])
		s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(GroupColor(g)).Render(heading))
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", colWidth)))
		s.WriteString("\n")

		tasks := m.columns[i]
		if len(tasks) == 0 {
			s.WriteString(HelpStyle.Render("No tasks. Press 'a' to add one."))
		}

		// Scroll so the cursor stays visible
		visible := innerHeight - 2
		start := 0
		if m.cursors[i] >= visible {
			start = m.cursors[i] - visible + 1
		}

		for j := start; j < len(tasks) && j < start+visible; j++ {
			t := tasks[j]

			cursor := "  "
			style := TaskItemStyle
			if m.selected(i, j) {
				cursor = "❯ "
				style = TaskItemSelectedStyle
			}

			icon := "[ ]"
			if t.Done {
				icon = "[x]"
				if !m.selected(i, j) {
					style = TaskDoneStyle
				}
			}

			line := fmt.Sprintf("%s%s %s", cursor, icon, truncate(t.Title, colWidth-6))
			s.WriteString(style.Render(line))
			s.WriteString("\n")
		}

		colStyle := ColumnStyle
		if i == m.col {
			colStyle = ColumnFocusedStyle
		}
		cols[i] = colStyle.Width(colWidth).Height(innerHeight).Render(s.String())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderStatusBar() string {
	help := "a:add  e:edit  x:done  d:del  H/L:move  .:hide done  r:pull  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}

	// Append sync status (right aligned)
	syncMsg := FormatStatus(tsync.StatusOff)
	if m.syncer != nil {
		syncMsg = FormatStatus(m.syncer.Status())
		if key := m.syncer.Key(); key != "" {
			syncMsg = HelpStyle.Render(truncate(key, 20)+" ") + syncMsg
		}
		if m.syncer.Status() == tsync.StatusError {
			if err := m.syncer.LastError(); err != nil {
				help = truncate(err.Error(), m.width/2)
			}
		}
	}

	avail := m.width - lipgloss.Width(help) - lipgloss.Width(syncMsg) - 2
	if avail > 0 {
		help += strings.Repeat(" ", avail) + syncMsg
	} else {
		help += " " + syncMsg
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	var title string
	switch m.mode {
	case ModeAddTask:
		title = fmt.Sprintf("Add Task to: %s", m.groups[m.col].Label())
	case ModeEditTask:
		title = "Edit Task"
	case ModeSetKey:
		title = "Sync Key"
	case ModeConfirmDelete:
		name := ""
		if t := m.currentTask(); t != nil && t.ID == m.pendingID {
			name = t.Title
		}
		content := lipgloss.NewStyle().Bold(true).Render("Delete task?") + "\n\n"
		content += truncate(name, 50) + "\n\n"
		content += HelpStyle.Render("y:delete  any other key:cancel")
		return ModalStyle.Render(content)
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	return `
╭─── Keyboard Shortcuts ───────╮
│                              │
│  Navigation                  │
│  ──────────                  │
│  h/l     Switch column       │
│  j/k     Move down/up        │
│  g/G     Top/bottom          │
│                              │
│  Actions                     │
│  ───────                     │
│  a       Add task            │
│  e       Edit title          │
│  x/Enter Toggle done         │
│  d       Delete              │
│  H/L <>  Move left/right     │
│  1/2/3   Move to Big/Mid/Tod │
│  .       Hide done           │
│  u       Undo last change    │
│                              │
│  Sync                        │
│  ────                        │
│  r       Pull now            │
│  K       Set sync key        │
│  s       Show share link     │
│                              │
│  ?       Toggle help         │
│  q       Quit                │
│                              │
╰──────────────────────────────╯

     Press any key to close
`
}

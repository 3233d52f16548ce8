package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/model"
	"github.com/existflow/trinote/internal/share"
)

// syncTimeout bounds the pull and the final flush started from the UI
const syncTimeout = 30 * time.Second

// tickMsg is sent every second for time updates
type tickMsg time.Time

// refreshMsg is sent when the board or the sync status changes
type refreshMsg struct{}

// pullDoneMsg reports the outcome of a manual pull
type pullDoneMsg struct{ err error }

// keyDoneMsg reports the outcome of switching the sync key
type keyDoneMsg struct {
	key string
	err error
}

// flushedMsg is sent once pending pushes went out on quit
type flushedMsg struct{ err error }

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForRefresh())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForRefresh listens for refresh signals
func (m Model) waitForRefresh() tea.Cmd {
	if m.refreshChan == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.refreshChan
		return refreshMsg{}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Check for delayed hiding
		needsRefresh := false
		for id, doneTime := range m.recentlyDone {
			if time.Since(doneTime) >= doneLinger {
				delete(m.recentlyDone, id)
				needsRefresh = true
			}
		}
		if needsRefresh {
			m.loadData()
		}
		return m, tickCmd()

	case refreshMsg:
		m.loadData()
		return m, m.waitForRefresh()

	case pullDoneMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Pull failed: %v", msg.err)
		} else {
			m.message = "Pulled from cloud"
		}
		m.loadData()
		return m, nil

	case keyDoneMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Key %s set, pull failed: %v", msg.key, msg.err)
		} else if msg.key == "" {
			m.message = "Sync key removed"
		} else {
			m.message = fmt.Sprintf("Sync key: %s", msg.key)
		}
		m.loadData()
		return m, nil

	case flushedMsg:
		if msg.err != nil {
			logger.Warn("Final push failed", logger.F("error", msg.err))
		}
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeAddTask, ModeEditTask, ModeSetKey:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, m.quit()

	case key.Matches(msg, keys.Left):
		if m.col > 0 {
			m.col--
		}

	case key.Matches(msg, keys.Right):
		if m.col < len(m.groups)-1 {
			m.col++
		}

	case key.Matches(msg, keys.Up):
		if m.cursors[m.col] > 0 {
			m.cursors[m.col]--
		}

	case key.Matches(msg, keys.Down):
		if m.cursors[m.col] < len(m.columns[m.col])-1 {
			m.cursors[m.col]++
		}

	case msg.String() == "g":
		m.cursors[m.col] = 0

	case msg.String() == "G":
		if n := len(m.columns[m.col]); n > 0 {
			m.cursors[m.col] = n - 1
		}

	case key.Matches(msg, keys.MoveLeft):
		if m.col > 0 {
			m.handleMove(m.groups[m.col-1])
		}

	case key.Matches(msg, keys.MoveRight):
		if m.col < len(m.groups)-1 {
			m.handleMove(m.groups[m.col+1])
		}

	case key.Matches(msg, keys.ToBig):
		m.handleMove(model.GroupBig)

	case key.Matches(msg, keys.ToMiddle):
		m.handleMove(model.GroupMiddle)

	case key.Matches(msg, keys.ToToday):
		m.handleMove(model.GroupToday)

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddTask, "", "Enter task...")

	case key.Matches(msg, keys.Edit):
		if task := m.currentTask(); task != nil {
			return m.startInput(ModeEditTask, task.Title, "Edit task...")
		}

	case key.Matches(msg, keys.SetKey):
		current := ""
		if m.syncer != nil {
			current = m.syncer.Key()
		}
		return m.startInput(ModeSetKey, current, "Sync key (empty to disconnect)")

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		m.handleToggleDone()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.HideDone):
		m.hideDone = !m.hideDone
		if m.hideDone {
			m.message = "Hiding completed tasks"
		} else {
			m.message = "Showing completed tasks"
		}
		m.loadData()

	case key.Matches(msg, keys.Undo):
		m.handleUndo()

	case key.Matches(msg, keys.Share):
		m.handleShare()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Refresh):
		return m, m.pull()
	}

	return m, nil
}

func (m *Model) handleMove(g model.Group) {
	task := m.currentTask()
	if task == nil || task.Group == g {
		return
	}
	moved, err := m.board.Move(task.ID, g)
	if err != nil {
		m.message = fmt.Sprintf("Error moving task: %v", err)
		return
	}
	m.loadData()
	m.focus(moved.ID)
	m.message = fmt.Sprintf("Moved to %s", g.Label())
}

func (m *Model) handleToggleDone() {
	task := m.currentTask()
	if task == nil {
		return
	}
	updated, err := m.board.Toggle(task.ID)
	if err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}

	if updated.Done {
		m.recentlyDone[updated.ID] = time.Now()
	} else {
		delete(m.recentlyDone, updated.ID)
	}
	m.loadData()
}

func (m *Model) handleDelete() {
	task := m.currentTask()
	if task == nil {
		return
	}
	if m.opts.ConfirmDelete {
		m.pendingID = task.ID
		m.mode = ModeConfirmDelete
		return
	}
	m.deleteTask(task.ID)
}

func (m *Model) deleteTask(id string) {
	deleted, err := m.board.Delete(id)
	if err != nil {
		m.message = fmt.Sprintf("Error deleting task: %v", err)
		return
	}
	m.loadData()
	m.message = fmt.Sprintf("Deleted: %s (u to undo)", deleted.Title)
}

func (m *Model) handleUndo() {
	if len(m.board.History()) == 0 {
		m.message = "Nothing to undo"
		return
	}
	if err := m.board.Restore(0); err != nil {
		m.message = fmt.Sprintf("Undo failed: %v", err)
		return
	}
	m.loadData()
	m.message = "Restored previous state"
}

func (m *Model) handleShare() {
	if m.syncer == nil || m.syncer.Key() == "" {
		m.message = "No sync key set (press K)"
		return
	}
	link, err := share.Link(m.opts.ShareBaseURL, m.syncer.Key())
	if err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}
	m.message = link
}

func (m Model) pull() tea.Cmd {
	if m.syncer == nil {
		return nil
	}
	s := m.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		return pullDoneMsg{err: s.Pull(ctx)}
	}
}

// quit sends any pending push before leaving
func (m Model) quit() tea.Cmd {
	if m.syncer == nil || !m.syncer.IsPending() {
		return tea.Quit
	}
	s := m.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		return flushedMsg{err: s.Flush(ctx)}
	}
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()

		switch mode {
		case ModeAddTask:
			if value == "" {
				return m, nil
			}
			task, err := m.board.Add(value, m.groups[m.col])
			if err != nil {
				m.message = fmt.Sprintf("Error adding task: %v", err)
				return m, nil
			}
			m.loadData()
			m.focus(task.ID)
			m.message = fmt.Sprintf("Added: %s", task.Title)

		case ModeEditTask:
			task := m.currentTask()
			if task == nil {
				return m, nil
			}
			if value == "" {
				m.message = "Title cannot be empty"
				return m, nil
			}
			if value == task.Title {
				return m, nil
			}
			if _, err := m.board.Rename(task.ID, value); err != nil {
				m.message = fmt.Sprintf("Error: %v", err)
				return m, nil
			}
			m.loadData()
			m.message = fmt.Sprintf("Updated: %s", value)

		case ModeSetKey:
			if m.syncer == nil {
				return m, nil
			}
			if value != "" {
				k, err := share.ValidateKey(value)
				if err != nil {
					m.message = fmt.Sprintf("Error: %v", err)
					return m, nil
				}
				value = k
			}
			return m, m.setKey(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) setKey(value string) tea.Cmd {
	s := m.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		return keyDoneMsg{key: value, err: s.SetKey(ctx, value)}
	}
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingID
	m.pendingID = ""
	m.mode = ModeNormal

	if key.Matches(msg, keys.Confirm) {
		m.deleteTask(id)
		return m, nil
	}
	m.message = "Delete cancelled"
	return m, nil
}

// selected reports whether the cursor is on row of col
func (m Model) selected(col, row int) bool {
	return col == m.col && row == m.cursors[col]
}

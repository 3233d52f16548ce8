package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/trinote/internal/board"
	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/model"
	tsync "github.com/existflow/trinote/internal/sync"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeEditTask
	ModeSetKey
	ModeConfirmDelete
	ModeHelp
)

// doneLinger keeps a just-completed task visible while done tasks are hidden
const doneLinger = 3 * time.Second

// Options configure the board view
type Options struct {
	HideDone      bool
	ConfirmDelete bool
	ShareBaseURL  string
}

// Model is the main TUI model
type Model struct {
	board  *board.Board
	syncer *tsync.Syncer
	opts   Options

	groups  []model.Group
	columns [][]model.Task
	counts  map[model.Group]int

	// refreshChan wakes the UI when the board or the sync status changes
	refreshChan chan struct{}

	// UI state
	width    int
	height   int
	mode     Mode
	col      int
	cursors  []int
	hideDone bool

	// Input
	input textinput.Model

	recentlyDone map[string]time.Time
	pendingID    string // Task awaiting delete confirmation

	message string
}

// NewModel creates a new TUI model
func NewModel(b *board.Board, s *tsync.Syncer, opts Options) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task..."
	ti.CharLimit = 256
	ti.Width = 50

	groups := model.Groups()
	m := Model{
		board:        b,
		syncer:       s,
		opts:         opts,
		groups:       groups,
		columns:      make([][]model.Task, len(groups)),
		cursors:      make([]int, len(groups)),
		hideDone:     opts.HideDone,
		mode:         ModeNormal,
		input:        ti,
		recentlyDone: make(map[string]time.Time),
		refreshChan:  make(chan struct{}, 1), // Buffered to avoid blocking
	}
	// Start on Today
	m.col = len(groups) - 1

	ch := m.refreshChan
	notify := func() {
		// Non-blocking send to trigger UI refresh
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.Subscribe(func(board.Event) { notify() })
	if s != nil {
		s.OnStatus(func(tsync.Status) { notify() })
	}

	// A recovery point for whatever this session does
	b.Snapshot(history.LabelAuto)

	m.loadData()
	logger.Debug("TUI model initialized", logger.F("tasks", len(b.Live())))
	return m
}

// Run starts the TUI and blocks until the user quits
func Run(b *board.Board, s *tsync.Syncer, opts Options) error {
	m := NewModel(b, s, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) loadData() {
	m.counts = m.board.Counts()
	for i, g := range m.groups {
		tasks := m.board.Group(g, false)
		if m.hideDone {
			visible := tasks[:0]
			for _, t := range tasks {
				if t.Done {
					// Keep recently completed tasks in place for a moment
					doneTime, ok := m.recentlyDone[t.ID]
					if !ok || time.Since(doneTime) >= doneLinger {
						continue
					}
				}
				visible = append(visible, t)
			}
			tasks = visible
		}
		m.columns[i] = tasks

		if m.cursors[i] >= len(tasks) {
			m.cursors[i] = len(tasks) - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

func (m *Model) currentTask() *model.Task {
	tasks := m.columns[m.col]
	if c := m.cursors[m.col]; c < len(tasks) {
		return &tasks[c]
	}
	return nil
}

// focus moves the cursor onto the task with id, wherever it now lives
func (m *Model) focus(id string) {
	for i, tasks := range m.columns {
		for j, t := range tasks {
			if t.ID == id {
				m.col = i
				m.cursors[i] = j
				return
			}
		}
	}
}

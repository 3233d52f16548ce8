package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/trinote/internal/board"
	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/model"
	"github.com/existflow/trinote/internal/store"
	tsync "github.com/existflow/trinote/internal/sync"
)

func newTestModel(t *testing.T, opts Options) (Model, *board.Board) {
	t.Helper()
	local := store.NewLocal(store.NewMemory())
	b := board.New(local, board.Options{HistoryLimit: 50})
	s := tsync.New(b, local, nil, tsync.Options{})
	t.Cleanup(s.Stop)

	m := NewModel(b, s, opts)
	m.width, m.height = 120, 40
	return m, b
}

func press(t *testing.T, m Model, presses ...string) Model {
	t.Helper()
	for _, k := range presses {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNewModel_StartsOnTodayWithSnapshot(t *testing.T) {
	m, b := newTestModel(t, Options{})

	assert.Equal(t, model.GroupToday, m.groups[m.col])
	entries := b.History()
	require.Len(t, entries, 1)
	assert.Equal(t, history.LabelAuto, entries[0].Label)
}

func TestUpdate_AddTaskToFocusedColumn(t *testing.T) {
	m, b := newTestModel(t, Options{})
	m = press(t, m, "h") // Middle

	m = press(t, m, "a")
	require.Equal(t, ModeAddTask, m.mode)
	m.input.SetValue("  Write report  ")
	m = press(t, m, "enter")

	assert.Equal(t, ModeNormal, m.mode)
	live := b.Live()
	require.Len(t, live, 1)
	assert.Equal(t, "Write report", live[0].Title)
	assert.Equal(t, model.GroupMiddle, live[0].Group)

	task := m.currentTask()
	require.NotNil(t, task)
	assert.Equal(t, live[0].ID, task.ID)
}

func TestUpdate_EmptyAddIsIgnored(t *testing.T) {
	m, b := newTestModel(t, Options{})

	m = press(t, m, "a", "enter")
	assert.Empty(t, b.Live())
	assert.Equal(t, ModeNormal, m.mode)
}

func TestUpdate_MoveFollowsTask(t *testing.T) {
	m, b := newTestModel(t, Options{})
	task, err := b.Add("Plan trip", model.GroupToday)
	require.NoError(t, err)
	m.loadData()

	m = press(t, m, "H")
	assert.Equal(t, model.GroupMiddle, m.groups[m.col])
	moved, err := b.Resolve(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupMiddle, moved.Group)

	m = press(t, m, "1")
	assert.Equal(t, model.GroupBig, m.groups[m.col])

	// Nothing left of Big
	m = press(t, m, "<")
	moved, err = b.Resolve(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupBig, moved.Group)

	m = press(t, m, ">")
	moved, err = b.Resolve(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupMiddle, moved.Group)
}

func TestUpdate_EditRenamesTask(t *testing.T) {
	m, b := newTestModel(t, Options{})
	task, err := b.Add("Draft", model.GroupToday)
	require.NoError(t, err)
	m.loadData()

	m = press(t, m, "e")
	require.Equal(t, ModeEditTask, m.mode)
	assert.Equal(t, "Draft", m.input.Value())

	m.input.SetValue("Final")
	m = press(t, m, "enter")

	renamed, err := b.Resolve(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", renamed.Title)
}

func TestUpdate_HideDoneKeepsRecentlyCompleted(t *testing.T) {
	m, b := newTestModel(t, Options{HideDone: true})
	_, err := b.Add("Laundry", model.GroupToday)
	require.NoError(t, err)
	m.loadData()

	m = press(t, m, "x")
	require.Len(t, m.columns[m.col], 1, "just completed task lingers")

	for id := range m.recentlyDone {
		m.recentlyDone[id] = time.Now().Add(-doneLinger)
	}
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	assert.Empty(t, m.columns[m.col])

	// Counts still include completed tasks
	assert.Equal(t, 1, m.counts[model.GroupToday])

	m = press(t, m, ".")
	assert.Len(t, m.columns[m.col], 1)
}

func TestUpdate_DeleteNeedsConfirmation(t *testing.T) {
	m, b := newTestModel(t, Options{ConfirmDelete: true})
	_, err := b.Add("Old note", model.GroupToday)
	require.NoError(t, err)
	m.loadData()

	m = press(t, m, "d")
	require.Equal(t, ModeConfirmDelete, m.mode)
	m = press(t, m, "n")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Len(t, b.Live(), 1)

	m = press(t, m, "d", "y")
	assert.Empty(t, b.Live())

	m = press(t, m, "u")
	assert.Len(t, b.Live(), 1)
	assert.Len(t, m.columns[m.col], 1)
}

func TestUpdate_ShareWithoutKey(t *testing.T) {
	m, _ := newTestModel(t, Options{ShareBaseURL: "https://example.com/board"})

	m = press(t, m, "s")
	assert.Contains(t, m.message, "No sync key")
}

func TestUpdate_QuitWithoutPendingPush(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_RefreshReloadsColumns(t *testing.T) {
	m, b := newTestModel(t, Options{})
	_, err := b.Add("From elsewhere", model.GroupBig)
	require.NoError(t, err)

	// The board change signals the refresh channel
	select {
	case <-m.refreshChan:
	default:
		t.Fatal("expected refresh signal")
	}

	next, cmd := m.Update(refreshMsg{})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Len(t, m.columns[0], 1)
}

func TestView_RendersColumnsAndStatus(t *testing.T) {
	m, b := newTestModel(t, Options{})
	_, err := b.Add("Visible task", model.GroupToday)
	require.NoError(t, err)
	m.loadData()

	out := m.View()
	for _, label := range []string{"Big (0)", "Middle (0)", "Today (1)", "Visible task", "cloud off"} {
		assert.Contains(t, out, label)
	}
}

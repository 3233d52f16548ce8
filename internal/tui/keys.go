package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	ToBig     key.Binding
	ToMiddle  key.Binding
	ToToday   key.Binding
	Enter     key.Binding
	Add       key.Binding
	Edit      key.Binding
	Done      key.Binding
	Delete    key.Binding
	HideDone  key.Binding
	Undo      key.Binding
	SetKey    key.Binding
	Share     key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Confirm   key.Binding
	Refresh   key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left column")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right column")),
	MoveLeft:  key.NewBinding(key.WithKeys("H", "<"), key.WithHelp("H/<", "move task left")),
	MoveRight: key.NewBinding(key.WithKeys("L", ">"), key.WithHelp("L/>", "move task right")),
	ToBig:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "move to Big")),
	ToMiddle:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "move to Middle")),
	ToToday:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "move to Today")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle/save")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Done:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	HideDone:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "hide done")),
	Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
	SetKey:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "sync key")),
	Share:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share link")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Refresh:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "pull")),
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoaded MsgKind = iota
	MsgMutated
)

// mutation is the payload of [MsgMutated].
type mutation struct {
	status string // shown on success
	err    error
	focus  int // list index to select afterwards, -1 keeps the cursor
}

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(err error) Msg {
	return Msg{kind: MsgLoaded, data: err}
}

// mutatedMsg is the constructor for [MsgMutated]
func mutatedMsg(status string, err error, focus int) Msg {
	return Msg{kind: MsgMutated, data: mutation{status: status, err: err, focus: focus}}
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/tasks"
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
	MsgReady MsgKind = iota
	MsgRoute
	MsgAlert
	MsgAuthDone
	MsgProgressUpdate
	MsgCatalogLoaded
)

// readyMsg is the constructor for [MsgReady]
func readyMsg() Msg {
	return Msg{kind: MsgReady}
}

// routeMsg is the constructor for [MsgRoute]
func routeMsg(route string) Msg {
	return Msg{kind: MsgRoute, data: route}
}

// alertMsg is the constructor for [MsgAlert]
func alertMsg(message string) Msg {
	return Msg{kind: MsgAlert, data: message}
}

// authDoneMsg is the constructor for [MsgAuthDone]
func authDoneMsg(err error) Msg {
	return Msg{kind: MsgAuthDone, data: err}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

type catalogResult struct {
	page *models.CatalogPage
	err  error
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(page *models.CatalogPage, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogResult{page, err}}
}

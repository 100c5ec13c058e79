// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a terminal rendition of the web front end, driven by the same [session.Manager] and [tasks.Loader]:
//  1. [StartingView] : Shown until the session reports ready
//  2. [AuthView] : Email and password form for signing in or creating an account
//  3. [LoadingView] : Catalog requests in flight, with per-category progress
//  4. [BrowseView] : Banner plus the seven catalog rows
//  5. [ErrorView] : The catalog could not be loaded
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The session manager talks to the model through a [Bridge], which forwards the routes it pushes and the alerts it
// raises to the running program as messages. Loader progress flows through a channel, read one update per command.
//
// In the browser, ←/→ move between rows and ↑/↓ move within a row. Contextual help is displayed via
// charmbracelet/bubbles/help.
package ui

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive terminal UI.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/reelx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	loader, err := r.catalogLoader(ctx)
	if err != nil {
		return err
	}

	bridge := ui.NewBridge()
	sessions, err := r.newSession(bridge, bridge)
	if err != nil {
		return err
	}
	defer sessions.Close()

	model := ui.NewModel(ctx, sessions, loader)
	model.SetImageBase(r.imageBase())

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

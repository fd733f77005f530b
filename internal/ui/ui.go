// Package ui renders the launcher as a bubbletea program. It is a pure view
// over store snapshots; all mutation goes through the update orchestrator.
package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teraforge/launcher/internal/state"
	"github.com/teraforge/launcher/internal/update"
)

// Options configure the launcher UI.
type Options struct {
	Context      context.Context
	Orchestrator *update.Orchestrator
	Store        *state.Store
	Sink         *Sink
	PrefsPath    string
	LogPath      string
}

// Run starts the UI and blocks until it exits. The sink is attached to the
// program before the first frame, so store notifications flow immediately.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	model := NewModel(ctx, opts.Orchestrator, opts.Store, opts.PrefsPath, opts.LogPath)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Sink != nil {
		opts.Sink.Attach(program)
	}
	opts.Store.OnChange(func(snap state.Snapshot) {
		program.Send(snapshotMsg{snap})
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

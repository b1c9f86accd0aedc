package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"weblint/internal/ui"
	"weblint/internal/workspace"
)

type lintOutcome struct {
	results []workspace.FileResult
	err     error
}

// runLintWithUI lints files while a progress model renders events on out.
// events must be the channel behind the workspace's ChannelSink.
func runLintWithUI(ctx context.Context, out io.Writer, ws *workspace.Workspace, files []string, opts workspace.LintOptions, events chan workspace.Event) ([]workspace.FileResult, error) {
	outcomeCh := make(chan lintOutcome, 1)
	go func() {
		res, err := ws.LintAll(ctx, files, opts)
		outcomeCh <- lintOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("linting", files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// модель могла выйти раньше: дочитываем события, чтобы LintAll не заблокировался
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if outcome.err != nil {
		return outcome.results, outcome.err
	}
	return outcome.results, uiErr
}

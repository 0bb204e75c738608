package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gtrans/internal/driver"
	"gtrans/internal/rewrite"
	"gtrans/internal/ui"
)

type treeOutcome struct {
	result *driver.TreeResult
	err    error
}

// runTreeWithUI runs TranslateTree while a Bubble Tea view renders its
// progress events.
func runTreeWithUI(ctx context.Context, title string, eng *rewrite.Engine, src, out string, opts driver.TreeOptions) (*driver.TreeResult, error) {
	events := make(chan driver.ProgressEvent, 256)
	outcomeCh := make(chan treeOutcome, 1)

	go func() {
		opts.Observer = func(ev driver.ProgressEvent) { events <- ev }
		res, err := driver.TranslateTree(ctx, eng, src, out, opts)
		outcomeCh <- treeOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// UI мог завершиться раньше: дочитываем события, чтобы перевод не встал
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

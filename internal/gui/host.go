// Package gui hosts the fyne status window whose lifecycle drives theme
// passes.
package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"themehint/internal/app"
)

const appID = "io.github.themehint"

// Run opens a small status window and binds the fyne lifecycle to the
// controller: started and foreground events apply the variant, stopping
// clears it. Trigger sources run in the background until the window
// closes or ctx is done.
func Run(ctx context.Context, a *app.App, debug bool) error {
	log := a.Logger()
	ctrl := a.Controller()
	log.Info("Starting GUI host")

	fa := fyneapp.NewWithID(appID)
	window := fa.NewWindow("themehint")

	status := widget.NewLabel(fmt.Sprintf("Variant: %s", a.Config().Variant()))
	detail := widget.NewLabel("Waiting for first pass...")
	ctrl.OnPass(func(p app.Pass) {
		status.SetText(fmt.Sprintf("Variant: %s", p.Variant))
		detail.SetText(describePass(p))
	})

	buttons := container.NewHBox(
		widget.NewButton("Apply", ctrl.Activated),
	)

	if debug {
		buffer := app.NewLogBuffer()
		log.AddWriter(buffer)
		panel := NewDebugPanel(fa, buffer, ctrl)
		buttons.Add(widget.NewButton("Debug Logs", panel.Show))
	}

	window.SetContent(container.NewBorder(status, buttons, nil, nil, detail))
	window.Resize(fyne.NewSize(360, 140))

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lifecycle := fa.Lifecycle()
	lifecycle.SetOnStarted(func() {
		ctrl.Started()
		go func() {
			if err := a.ServeTriggers(bgCtx); err != nil {
				log.Error("Trigger sources stopped", err)
			}
		}()
	})
	lifecycle.SetOnEnteredForeground(ctrl.Activated)
	lifecycle.SetOnStopped(func() {
		cancel()
		ctrl.Stopped()
	})

	go func() {
		<-bgCtx.Done()
		if ctx.Err() != nil {
			log.Info("Shutdown requested, closing window")
			fa.Quit()
		}
	}()

	window.ShowAndRun()
	return nil
}

func describePass(p app.Pass) string {
	switch {
	case p.Err != nil:
		return fmt.Sprintf("%s: %v", p.Trigger, p.Err)
	case p.Outcome == nil:
		return p.Trigger
	case p.Outcome.HasFailures():
		return fmt.Sprintf("%s: %d of %d windows failed", p.Trigger, len(p.Outcome.Failures), len(p.Outcome.Handles))
	default:
		return fmt.Sprintf("%s: %d windows updated", p.Trigger, len(p.Outcome.Handles))
	}
}

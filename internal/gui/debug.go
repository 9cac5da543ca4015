package gui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"themehint/internal/app"
)

// DebugPanel is a secondary window showing recent log output.
type DebugPanel struct {
	window   fyne.Window
	textArea *widget.TextGrid
	buffer   *app.LogBuffer
}

func NewDebugPanel(a fyne.App, buffer *app.LogBuffer, ctrl *app.Controller) *DebugPanel {
	dp := &DebugPanel{
		window:   a.NewWindow("themehint debug"),
		textArea: widget.NewTextGrid(),
		buffer:   buffer,
	}

	applyBtn := widget.NewButton("Re-apply", ctrl.Activated)
	clearBtn := widget.NewButton("Clear", buffer.Clear)

	content := container.NewBorder(
		container.NewHBox(applyBtn, clearBtn),
		nil,
		nil,
		nil,
		container.NewScroll(dp.textArea),
	)
	dp.window.SetContent(content)
	dp.window.Resize(fyne.NewSize(800, 600))
	dp.window.SetCloseIntercept(dp.window.Hide)

	dp.textArea.SetText(strings.Join(buffer.Lines(), "\n"))
	buffer.SetOnChange(func(text string) {
		dp.textArea.SetText(text)
	})
	return dp
}

func (dp *DebugPanel) Show() {
	dp.window.Show()
}

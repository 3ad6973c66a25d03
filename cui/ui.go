// Package cui provides the character user interface of the generator.
package cui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// UI provides formatted I/O for the application.
type UI interface {
	// Output writes out the passed argument s to Writer with a line break.
	Output(s string)

	// Info is the same as Output, but distinguished for composition.
	Info(s string)

	// Error writes out the passed argument s to ErrWriter with a line break.
	Error(s string)

	// Writer returns the writer Output writes to.
	Writer() io.Writer
}

type basicUI struct {
	writer    io.Writer
	errWriter io.Writer
}

// New instantiates a new UI with the passed options.
func New(opts ...Option) UI {
	ui := &basicUI{
		writer:    colorable.NewColorableStdout(),
		errWriter: colorable.NewColorableStderr(),
	}
	for _, opt := range opts {
		opt(ui)
	}
	return ui
}

func (u *basicUI) Output(s string) {
	fmt.Fprintln(u.writer, s)
}

func (u *basicUI) Info(s string) {
	u.Output(s)
}

func (u *basicUI) Error(s string) {
	fmt.Fprintln(u.errWriter, s)
}

func (u *basicUI) Writer() io.Writer {
	return u.writer
}

type coloredUI struct {
	UI
}

// NewColored wraps the passed UI so that Info and Error are colored.
func NewColored(ui UI) UI {
	if ui, ok := ui.(*coloredUI); ok {
		return ui
	}
	return &coloredUI{ui}
}

func (u *coloredUI) Info(s string) {
	u.UI.Info(color.BlueString(s))
}

func (u *coloredUI) Error(s string) {
	u.UI.Error(color.RedString(s))
}

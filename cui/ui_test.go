package cui

import (
	"bytes"
	"testing"
)

func TestBasicUI(t *testing.T) {
	var out, errOut bytes.Buffer
	ui := New(Writer(&out), ErrWriter(&errOut))

	ui.Output("generated 6 files")
	ui.Error("bridgen: boom")

	if got, want := out.String(), "generated 6 files\n"; got != want {
		t.Errorf("Output wrote %q, want %q", got, want)
	}
	if got, want := errOut.String(), "bridgen: boom\n"; got != want {
		t.Errorf("Error wrote %q, want %q", got, want)
	}
	if ui.Writer() != &out {
		t.Error("Writer must return the configured writer")
	}
}

func TestNewColored(t *testing.T) {
	var out bytes.Buffer
	ui := NewColored(New(Writer(&out), ErrWriter(&out)))
	if doubled := NewColored(ui); doubled != ui {
		t.Error("NewColored must not wrap an already colored UI")
	}
}

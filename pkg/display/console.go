// Package display provides sinks for the relay's visible window.
package display

import (
	"fmt"
	"io"
)

// Console renders the device window on a text terminal using ANSI
// cursor addressing, for development without LCD hardware.
type Console struct {
	W io.Writer
}

// NewConsole creates a Console on a writer.
func NewConsole(w io.Writer) *Console {
	return &Console{W: w}
}

// WriteRow implements the relay display contract.
func (d *Console) WriteRow(row int, text []byte) error {
	_, err := fmt.Fprintf(d.W, "\x1b[%d;1H%s", row+1, text)
	return err
}

// Discard drops all output, for running headless.
var Discard discard

type discard struct{}

func (discard) WriteRow(int, []byte) error { return nil }

// Package hd44780 drives an HD44780-compatible character LCD in 4-bit
// mode over six GPIO lines, with RW tied to ground.
package hd44780

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Opts is the display geometry.
type Opts struct {
	Cols int // default 16
	Rows int // default 2
}

// Dev is an opened display.
type Dev struct {
	rs, e, d4, d5, d6, d7 gpio.PinOut
	cols, rows            int
}

// New initializes the display. All six pins are required and are
// driven as outputs. The init sequence forces 8-bit mode three times
// before switching to 4-bit, so it recovers the controller from any
// half-nibble state.
func New(rs, e, d4, d5, d6, d7 gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{rs: rs, e: e, d4: d4, d5: d5, d6: d6, d7: d7, cols: opts.Cols, rows: opts.Rows}
	if d.cols == 0 {
		d.cols = 16
	}
	if d.rows == 0 {
		d.rows = 2
	}
	for _, p := range []gpio.PinOut{rs, e, d4, d5, d6, d7} {
		if p == nil {
			return nil, errors.New("hd44780: all six pins are required")
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, err
		}
	}
	time.Sleep(50 * time.Millisecond)
	if err := d.write4(0x03); err != nil {
		return nil, err
	}
	time.Sleep(5 * time.Millisecond)
	if err := d.write4(0x03); err != nil {
		return nil, err
	}
	time.Sleep(150 * time.Microsecond)
	if err := d.write4(0x03); err != nil {
		return nil, err
	}
	if err := d.write4(0x02); err != nil { // 4-bit from here on
		return nil, err
	}
	for _, cmd := range []byte{
		0x28, // 4-bit, 2-line, 5x8 font
		0x08, // display off
	} {
		if err := d.command(cmd); err != nil {
			return nil, err
		}
	}
	if err := d.Clear(); err != nil {
		return nil, err
	}
	for _, cmd := range []byte{
		0x06, // entry mode: increment, no shift
		0x0c, // display on, cursor off, blink off
	} {
		if err := d.command(cmd); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Clear blanks the display.
func (d *Dev) Clear() error {
	if err := d.command(0x01); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// WriteRow writes one display row starting at column 0. Text beyond
// the display width is dropped; non-printable bytes become spaces.
func (d *Dev) WriteRow(row int, text []byte) error {
	if err := d.setCursor(0, row); err != nil {
		return err
	}
	n := len(text)
	if n > d.cols {
		n = d.cols
	}
	for i := 0; i < n; i++ {
		ch := text[i]
		if ch < 32 || ch > 126 {
			ch = ' '
		}
		if err := d.data(ch); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) setCursor(col, row int) error {
	if row < 0 {
		row = 0
	}
	if row > d.rows-1 {
		row = d.rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col > d.cols-1 {
		col = d.cols - 1
	}
	return d.command(0x80 | byte(col+0x40*row))
}

func (d *Dev) command(cmd byte) error {
	if err := d.rs.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.write4(cmd >> 4); err != nil {
		return err
	}
	return d.write4(cmd & 0x0f)
}

func (d *Dev) data(b byte) error {
	if err := d.rs.Out(gpio.High); err != nil {
		return err
	}
	if err := d.write4(b >> 4); err != nil {
		return err
	}
	return d.write4(b & 0x0f)
}

func (d *Dev) write4(val byte) error {
	pins := []gpio.PinOut{d.d4, d.d5, d.d6, d.d7}
	for i, p := range pins {
		if err := p.Out(gpio.Level(val>>uint(i)&1 == 1)); err != nil {
			return err
		}
	}
	return d.pulse()
}

func (d *Dev) pulse() error {
	if err := d.e.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(time.Microsecond)
	if err := d.e.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(100 * time.Microsecond)
	return nil
}

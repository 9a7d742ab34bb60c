// Package term holds the device's copy of the host screen: a fixed
// 24x80 character grid with a scrollable 16x2 viewport onto it.
package term

// Grid and window dimensions, fixed at build time.
const (
	Rows = 24
	Cols = 80

	WindowRows = 2
	WindowCols = 16
)

// Buffer is the last received screen snapshot plus the viewport
// position. It is owned by a single goroutine; mutation happens only
// through ApplySnapshot and the scroll operations.
type Buffer struct {
	cells [Rows][Cols]byte

	rowOff int
	colOff int

	// Dimensions of the last applied snapshot, bounding the scroll
	// range. A smaller incoming snapshot shrinks it.
	activeRows int
	activeCols int
}

// NewBuffer returns a cleared buffer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.Reset()
	return b
}

// Reset clears the grid to spaces and rewinds the viewport.
func (b *Buffer) Reset() {
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c] = ' '
		}
	}
	b.rowOff, b.colOff = 0, 0
	b.activeRows, b.activeCols = Rows, Cols
}

// ApplySnapshot copies a row-major snapshot into the grid. Dimensions
// are clamped to the grid capacity; the copy skips cols-C source bytes
// per row so column truncation keeps the source row stride. Bytes
// outside printable ASCII become spaces. data may be shorter than
// rows*cols when the receiver dropped over-capacity payload; cells
// whose source byte was dropped keep their previous content.
func (b *Buffer) ApplySnapshot(rows, cols uint8, data []byte) {
	stride := int(cols)
	clampedRows, clampedCols := int(rows), stride
	if clampedRows > Rows {
		clampedRows = Rows
	}
	if clampedCols > Cols {
		clampedCols = Cols
	}
	for r := 0; r < clampedRows; r++ {
		base := r * stride
		if base >= len(data) {
			break
		}
		for c := 0; c < clampedCols && base+c < len(data); c++ {
			ch := data[base+c]
			if ch < 32 || ch > 126 {
				ch = ' '
			}
			b.cells[r][c] = ch
		}
	}
	b.activeRows, b.activeCols = clampedRows, clampedCols
	b.rowOff = clampOffset(b.rowOff, clampedRows-1)
	b.colOff = clampOffset(b.colOff, clampedCols-1)
}

// ScrollRows moves the viewport vertically. The offset is clamped so
// the visible window stays within the active snapshot. Reports whether
// the viewport moved.
func (b *Buffer) ScrollRows(delta int) bool {
	return scroll(&b.rowOff, delta, b.activeRows-WindowRows)
}

// ScrollCols moves the viewport horizontally.
func (b *Buffer) ScrollCols(delta int) bool {
	return scroll(&b.colOff, delta, b.activeCols-WindowCols)
}

// Offset returns the current viewport position.
func (b *Buffer) Offset() (row, col int) {
	return b.rowOff, b.colOff
}

// Window returns the visible display rows at the current viewport.
// Reads clamp at the bottom/right edge, repeating the last valid row
// or column rather than wrapping.
func (b *Buffer) Window() [WindowRows][WindowCols]byte {
	var w [WindowRows][WindowCols]byte
	for r := 0; r < WindowRows; r++ {
		rr := clampIndex(b.rowOff+r, Rows-1)
		for c := 0; c < WindowCols; c++ {
			w[r][c] = b.cells[rr][clampIndex(b.colOff+c, Cols-1)]
		}
	}
	return w
}

func scroll(off *int, delta, max int) bool {
	if max < 0 {
		max = 0
	}
	v := *off + delta
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	if v == *off {
		return false
	}
	*off = v
	return true
}

func clampOffset(v, max int) int {
	if max < 0 {
		max = 0
	}
	if v > max {
		return max
	}
	return v
}

func clampIndex(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

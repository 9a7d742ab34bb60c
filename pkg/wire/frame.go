package wire

import (
	"io"
	"strings"
)

// Framing bytes.
const (
	STX byte = 0x02
	ETX byte = 0x03
	Tag byte = 'S'
)

// Device-side buffer capacity. Snapshot payloads beyond this are
// consumed from the stream but never retained.
const (
	MaxRows = 24
	MaxCols = 80

	maxPayload = MaxRows * MaxCols
)

// Snapshot is one host-to-device frame: a rectangular grid of
// printable ASCII, row-major. Data holds up to Rows*Cols bytes; a
// received Snapshot may carry less when the sender's dimensions exceed
// the device capacity.
type Snapshot struct {
	Rows uint8
	Cols uint8
	Data []byte
}

// Bytes returns the encoded frame for sending.
func (s *Snapshot) Bytes() []byte {
	b := make([]byte, 0, len(s.Data)+5)
	b = append(b, STX, Tag, s.Rows, s.Cols)
	b = append(b, s.Data...)
	return append(b, ETX)
}

// WriteTo writes the encoded frame.
func (s *Snapshot) WriteTo(w io.Writer) (n int, err error) {
	if n, err = w.Write([]byte{STX, Tag, s.Rows, s.Cols}); err != nil {
		return
	}
	var n1 int
	if len(s.Data) > 0 {
		if n1, err = w.Write(s.Data); err != nil {
			return n + n1, err
		}
		n += n1
	}
	n1, err = w.Write([]byte{ETX})
	return n + n1, err
}

// SnapshotFromText builds a full rows*cols Snapshot from plain text.
// Lines are split on '\n', right-padded with spaces and truncated to
// cols; missing rows are blank. Bytes outside printable ASCII become
// spaces, matching what the device would do on ingestion.
func SnapshotFromText(rows, cols uint8, text string) *Snapshot {
	s := &Snapshot{Rows: rows, Cols: cols, Data: make([]byte, int(rows)*int(cols))}
	for i := range s.Data {
		s.Data[i] = ' '
	}
	lines := strings.Split(text, "\n")
	for r := 0; r < int(rows) && r < len(lines); r++ {
		line := lines[r]
		for c := 0; c < int(cols) && c < len(line); c++ {
			ch := line[c]
			if ch < 32 || ch > 126 {
				ch = ' '
			}
			s.Data[r*int(cols)+c] = ch
		}
	}
	return s
}

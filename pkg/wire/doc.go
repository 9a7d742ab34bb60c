// Package wire implements the terminal-relay frame protocol.
package wire

// The protocol runs over a byte stream (UART or any io.ReadWriter)
// between the host and the display device. The host pushes full-screen
// snapshot frames:
//
//	0x02 'S' <rows> <cols> <rows*cols payload bytes> 0x03
//
// and the device replies with terminated ASCII event lines such as
// "KEY:ENTER" or "TXT:a".
//
// Framing is deliberately minimal: no sequence numbers, no checksum,
// no retransmission. A malformed or stalled frame is dropped silently
// and reception restarts at the next STX; the host's next periodic
// snapshot supersedes whatever was lost.
//
// Producer of frames: host bridge
// Consumer of frames: display device

// termcli plays the host side of a device link interactively: push
// snapshots at the device, watch the key events it sends back.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/tarm/serial"
	"golang.org/x/net/websocket"

	"github.com/termlink/termlink.go/pkg/wire"
)

var (
	rows = int(wire.MaxRows)
	cols = int(wire.MaxCols)
)

func init() {
	flag.IntVar(&rows, "rows", rows, "Snapshot rows.")
	flag.IntVar(&cols, "cols", cols, "Snapshot columns.")
}

type session struct {
	shell *ishell.Shell

	lock sync.Mutex
	conn io.ReadWriteCloser
}

func (s *session) connect(conn io.ReadWriteCloser, name string) {
	s.lock.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	s.lock.Unlock()
	s.shell.Printf("connected to %s\n", name)
	s.shell.SetPrompt(name + " > ")
	go s.watch(conn)
}

// watch prints event lines until the connection goes away.
func (s *session) watch(conn io.Reader) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if ev, err := wire.ParseEventLine(line); err != nil {
			s.shell.Printf("?? %q\n", line)
		} else {
			s.shell.Printf("<- %s (%T)\n", line, ev)
		}
	}
}

func (s *session) send(text string) {
	s.lock.Lock()
	conn := s.conn
	s.lock.Unlock()
	if conn == nil {
		s.shell.Println("not connected, use open or dial first")
		return
	}
	snap := wire.SnapshotFromText(uint8(rows), uint8(cols), text)
	if _, err := snap.WriteTo(conn); err != nil {
		s.shell.Printf("send failed: %v\n", err)
		return
	}
	s.shell.Printf("-> %dx%d snapshot\n", snap.Rows, snap.Cols)
}

func main() {
	flag.Parse()
	if rows < 1 || rows > 255 || cols < 1 || cols > 255 {
		fmt.Fprintln(os.Stderr, "rows and cols must be in 1..255")
		os.Exit(1)
	}

	s := &session{shell: ishell.New()}
	s.shell.Println("termlink device console")
	s.shell.SetPrompt("[none] > ")

	s.shell.AddCmd(&ishell.Cmd{
		Name: "open",
		Help: "open <serial-device> [baud] - connect over a serial port",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Println("usage: open <serial-device> [baud]")
				return
			}
			baud := 115200
			if len(c.Args) > 1 {
				var err error
				if baud, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Printf("bad baud rate %q\n", c.Args[1])
					return
				}
			}
			port, err := serial.OpenPort(&serial.Config{Name: c.Args[0], Baud: baud})
			if err != nil {
				c.Printf("open failed: %v\n", err)
				return
			}
			s.connect(port, c.Args[0])
		},
	})
	s.shell.AddCmd(&ishell.Cmd{
		Name: "dial",
		Help: "dial <ws-url> - connect over a websocket",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: dial <ws-url>")
				return
			}
			conn, err := websocket.Dial(c.Args[0], "", "http://localhost/")
			if err != nil {
				c.Printf("dial failed: %v\n", err)
				return
			}
			s.connect(conn, c.Args[0])
		},
	})
	s.shell.AddCmd(&ishell.Cmd{
		Name: "text",
		Help: "text <words...> - send a one-line snapshot",
		Func: func(c *ishell.Context) {
			s.send(strings.Join(c.Args, " "))
		},
	})
	s.shell.AddCmd(&ishell.Cmd{
		Name: "screen",
		Help: "screen - compose a multi-line snapshot, end with ';'",
		Func: func(c *ishell.Context) {
			c.Println("enter screen contents, end with ';'")
			text := c.ReadMultiLines(";")
			s.send(strings.TrimSuffix(text, ";"))
		},
	})
	s.shell.AddCmd(&ishell.Cmd{
		Name: "file",
		Help: "file <path> - send file contents as a snapshot",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: file <path>")
				return
			}
			data, err := os.ReadFile(c.Args[0])
			if err != nil {
				c.Printf("read failed: %v\n", err)
				return
			}
			s.send(string(data))
		},
	})
	s.shell.AddCmd(&ishell.Cmd{
		Name: "close",
		Help: "close - drop the current connection",
		Func: func(c *ishell.Context) {
			s.lock.Lock()
			if s.conn != nil {
				s.conn.Close()
				s.conn = nil
			}
			s.lock.Unlock()
			s.shell.SetPrompt("[none] > ")
		},
	})

	s.shell.Run()
}

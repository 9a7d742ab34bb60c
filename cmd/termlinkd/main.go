package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/tarm/serial"
	"golang.org/x/net/websocket"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/termlink/termlink.go/pkg/display"
	"github.com/termlink/termlink.go/pkg/display/hd44780"
	fx "github.com/termlink/termlink.go/pkg/framework"
	"github.com/termlink/termlink.go/pkg/input"
	"github.com/termlink/termlink.go/pkg/relay"
	"github.com/termlink/termlink.go/pkg/wire"
)

var (
	serialDev = "/dev/serial0"
	baud      = 115200
	wsURL     = ""
	hidrawDev = ""

	displayKind = "console"
	lcdPins     = "GPIO6,GPIO7,GPIO10,GPIO11,GPIO12,GPIO13" // RS,E,D4,D5,D6,D7

	encVA    = ""
	encVB    = ""
	encHA    = ""
	encHB    = ""
	btnEnter = ""
	btnBack  = ""

	frameTimeout = wire.DefaultFieldTimeout
)

func init() {
	relay.SetupFlags()
	flag.StringVar(&serialDev, "serial", serialDev, "Serial device of the host link.")
	flag.IntVar(&baud, "baud", baud, "Serial baud rate.")
	flag.StringVar(&wsURL, "ws", wsURL, "Websocket URL of the host link instead of a serial device.")
	flag.StringVar(&hidrawDev, "hidraw", hidrawDev, "hidraw device of the USB keyboard, empty to disable.")
	flag.StringVar(&displayKind, "display", displayKind, "Display driver: console, lcd or none.")
	flag.StringVar(&lcdPins, "lcd-pins", lcdPins, "LCD pins RS,E,D4,D5,D6,D7 for -display lcd.")
	flag.StringVar(&encVA, "enc-v-a", encVA, "Vertical scroll encoder phase A pin, empty to disable.")
	flag.StringVar(&encVB, "enc-v-b", encVB, "Vertical scroll encoder phase B pin.")
	flag.StringVar(&encHA, "enc-h-a", encHA, "Horizontal scroll encoder phase A pin, empty to disable.")
	flag.StringVar(&encHB, "enc-h-b", encHB, "Horizontal scroll encoder phase B pin.")
	flag.StringVar(&btnEnter, "btn-enter", btnEnter, "Enter button pin, empty to disable.")
	flag.StringVar(&btnBack, "btn-back", btnBack, "Backspace button pin, empty to disable.")
	flag.DurationVar(&frameTimeout, "frame-timeout", frameTimeout, "Per-field frame read timeout.")
}

type gpioPin struct {
	p gpio.PinIO
}

func (g gpioPin) Read() bool {
	return bool(g.p.Read())
}

func inputPin(name string) input.Pin {
	if name == "" {
		return nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		log.Fatalf("unknown pin %q", name)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		log.Fatalln(err)
	}
	return gpioPin{p}
}

func outputPin(name string) gpio.PinOut {
	p := gpioreg.ByName(name)
	if p == nil {
		log.Fatalf("unknown pin %q", name)
	}
	return p
}

func needGPIO() bool {
	return displayKind == "lcd" || encVA != "" || encHA != "" || btnEnter != "" || btnBack != ""
}

func openLink() *wire.Link {
	if wsURL != "" {
		conn, err := websocket.Dial(wsURL, "", "http://localhost/")
		if err != nil {
			log.Fatalln(err)
		}
		return wire.NewLink(conn)
	}
	port, err := serial.OpenPort(&serial.Config{Name: serialDev, Baud: baud})
	if err != nil {
		log.Fatalln(err)
	}
	return wire.NewLink(port)
}

func openDisplay() relay.Display {
	switch displayKind {
	case "console":
		return display.NewConsole(os.Stdout)
	case "none":
		return display.Discard
	case "lcd":
		var pins [6]gpio.PinOut
		names := splitPins(lcdPins)
		for i, name := range names {
			pins[i] = outputPin(name)
		}
		dev, err := hd44780.New(pins[0], pins[1], pins[2], pins[3], pins[4], pins[5], nil)
		if err != nil {
			log.Fatalln(err)
		}
		return dev
	}
	log.Fatalf("unknown display %q", displayKind)
	return nil
}

func splitPins(s string) [6]string {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		log.Fatalf("-lcd-pins needs 6 comma-separated pin names, got %q", s)
	}
	var names [6]string
	copy(names[:], parts)
	return names
}

func main() {
	flag.Parse()

	if needGPIO() {
		if _, err := host.Init(); err != nil {
			log.Fatalln(err)
		}
	}

	link := openLink()
	link.Timeout = frameTimeout

	ctl := relay.NewConfig().NewController(link, openDisplay())
	ctl.VScroll = relay.EncoderPins{A: inputPin(encVA), B: inputPin(encVB)}
	ctl.HScroll = relay.EncoderPins{A: inputPin(encHA), B: inputPin(encHB)}
	ctl.EnterBtn = inputPin(btnEnter)
	ctl.BackBtn = inputPin(btnBack)

	loop := fx.NewLoop().Add(ctl)
	if hidrawDev != "" {
		src, err := os.Open(hidrawDev)
		if err != nil {
			log.Fatalln(err)
		}
		loop.AddRunnable(&relay.ReportReader{Source: src, Target: ctl})
	}
	loop.RunOrFail()
}

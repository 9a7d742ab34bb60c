package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/tarm/serial"

	"github.com/termlink/termlink.go/pkg/bridge"
	"github.com/termlink/termlink.go/pkg/comm/mqtt"
	fx "github.com/termlink/termlink.go/pkg/framework"
	"github.com/termlink/termlink.go/pkg/wire"
)

var (
	mqttURL   = "mqtt://localhost:1883/termlink/"
	serialDev = "/dev/serial0"
	baud      = 115200
	rows      = int(wire.MaxRows)
	cols      = int(wire.MaxCols)
	interval  = bridge.DefaultMinInterval
)

func init() {
	if val := os.Getenv("TERMLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&serialDev, "serial", serialDev, "Serial device of the device link.")
	flag.IntVar(&baud, "baud", baud, "Serial baud rate.")
	flag.IntVar(&rows, "rows", rows, "Snapshot rows.")
	flag.IntVar(&cols, "cols", cols, "Snapshot columns.")
	flag.DurationVar(&interval, "interval", interval, "Minimum interval between snapshot pushes.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	if rows < 1 || rows > 255 || cols < 1 || cols > 255 {
		log.Fatalln("rows and cols must be in 1..255")
	}

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	token := q.Connect()
	if token.WaitTimeout(10*time.Second); token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	port, err := serial.OpenPort(&serial.Config{Name: serialDev, Baud: baud})
	if err != nil {
		log.Fatalln(err)
	}

	b := bridge.New(q, port)
	b.Rows, b.Cols = uint8(rows), uint8(cols)
	b.MinInterval = interval

	runner := fx.NewRunner().HandleSignals()
	runner.Go(b)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

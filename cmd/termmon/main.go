package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/termlink/termlink.go/pkg/comm/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/termlink/"
)

func init() {
	if val := os.Getenv("TERMLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "keys"):
			log.Printf("%s: %s", topic, strings.TrimRight(string(payload), "\r\n"))
		case strings.HasSuffix(topic, "screen"):
			line := string(payload)
			if idx := strings.IndexByte(line, '\n'); idx >= 0 {
				line = line[:idx]
			}
			log.Printf("%s: %d bytes, first line %q", topic, len(payload), line)
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	<-(chan struct{})(nil)
}

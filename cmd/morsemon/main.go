package main

import (
	"context"
	"flag"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/comm/mqtt"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/output/console"
)

var (
	mqttURL = "mqtt://localhost:1883/"
	render  string
	width   = 16
	color   = true
)

func init() {
	if val := os.Getenv("MORSE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&render, "render", render, "Render device states of this station on the terminal.")
	flag.IntVar(&width, "width", width, "Rendered display width.")
	flag.BoolVar(&color, "color", color, "Use ANSI colors when rendering.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	client, err := mqtt.NewClientFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := client.ConnectAndWait(); err != nil {
		log.Fatalln(err)
	}
	defer client.Close()

	client.Sub("#", func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeID, err)
			return
		}
		log.Printf("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(msgs.SerializableMessage).Serializable().String())
	})

	runner := fx.NewRunner().HandleSignals()
	if render != "" {
		ref, err := comm.ParseStationRef(render)
		if err != nil {
			log.Fatalln(err)
		}
		term := console.NewTerminal(os.Stdout, color)
		runner.Go(&mqtt.DeviceNode{
			Client:  client,
			Ref:     ref,
			Display: term.Display(width),
			Light:   term.Light(),
			Tone:    term.Tone(),
		})
	} else {
		runner.Go(fx.RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

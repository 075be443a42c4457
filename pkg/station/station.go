// Package station wires message sources, the playback controller and
// the output devices into a runnable station.
package station

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/comm/mqtt"
	"github.com/robotalks/morse.go/pkg/comm/udp"
	"github.com/robotalks/morse.go/pkg/comm/websocket"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/morse"
	"github.com/robotalks/morse.go/pkg/output"
	"github.com/robotalks/morse.go/pkg/output/console"
	"github.com/robotalks/morse.go/pkg/playback"
)

// Station is a running morse station.
type Station struct {
	Config     *Config
	Queue      *comm.Queue
	Controller *playback.Controller
	Pumps      []*comm.Pump
	// UDP is set when the UDP source is enabled.
	UDP *udp.Reader
	// Registrar is set when MQTT is enabled.
	Registrar *mqtt.Registrar
	// Monitor is set when the websocket feed is enabled.
	Monitor *websocket.Server
	// Memory holds device state of the "none" output.
	Memory *output.Memory

	closers []func() error
}

// NewStation creates the station from config. Failures bringing up
// sockets or devices are returned, the station is unusable then.
func (c *Config) NewStation() (*Station, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	timing := playback.DefaultTiming()
	if c.TimingFile != "" {
		t, err := playback.LoadTiming(c.TimingFile)
		if err != nil {
			return nil, fmt.Errorf("load timing %s: %w", c.TimingFile, err)
		}
		timing = t
	}
	if c.Tempo != 1 {
		timing = timing.Scale(c.Tempo)
		if err := timing.Validate(); err != nil {
			return nil, fmt.Errorf("tempo %v: %w", c.Tempo, err)
		}
	}
	policy, _ := comm.ParsePolicy(c.Overflow)

	s := &Station{
		Config: c,
		Queue:  comm.NewQueue(c.QueueDepth, policy),
	}
	ok := false
	defer func() {
		if !ok {
			s.close()
		}
	}()

	if c.Listen != "" {
		reader, err := udp.Listen(c.Listen)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", c.Listen, err)
		}
		s.UDP = reader
		s.closers = append(s.closers, reader.Close)
		s.Pumps = append(s.Pumps, comm.NewPump("udp", reader, s.Queue))
		c.Info.Meta.Listen = reader.Addr().String()
	}

	var client *mqtt.Client
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.DialStation(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		s.Registrar, client = reg, reg.Client
		s.Pumps = append(s.Pumps, comm.NewPump("mqtt", mqtt.NewTextSource(client, c.Info.Ref), s.Queue))
	}

	var sinks *output.Sinks
	switch c.Output {
	case OutputConsole:
		sinks = console.NewTerminal(os.Stdout, c.Color).Sinks(c.DisplayWidth)
	case OutputMQTT:
		sinks = mqtt.NewRemoteDevices(client, c.Info.Ref, c.DisplayWidth).Sinks()
	case OutputNone:
		s.Memory = output.NewMemory(c.DisplayWidth)
		s.Memory.Limit = 256
		sinks = s.Memory.Sinks()
	}
	if err := sinks.Validate(); err != nil {
		return nil, fmt.Errorf("output %s: %w", c.Output, err)
	}

	s.Controller = playback.New(sinks)
	s.Controller.Encoder = morse.NewEncoder(c.Capacity)
	s.Controller.Timing = timing
	if client != nil {
		s.Controller.AddObserver(mqtt.NewEventPublisher(client, c.Info.Ref, s.Queue.Dropped))
	}
	if c.MonitorAddr != "" {
		s.Monitor = &websocket.Server{Addr: c.MonitorAddr, Feed: websocket.NewFeed(s.Queue.Dropped)}
		if err := s.Monitor.Listen(); err != nil {
			return nil, fmt.Errorf("monitor %s: %w", c.MonitorAddr, err)
		}
		s.Controller.AddObserver(s.Monitor.Feed)
	}
	ok = true
	return s, nil
}

// MustNewStation creates Station and fails on error.
func (c *Config) MustNewStation() *Station {
	s, err := c.NewStation()
	if err != nil {
		log.Fatalln(err)
	}
	return s
}

func (s *Station) close() {
	for _, fn := range s.closers {
		fn()
	}
}

// Name implements Named.
func (s *Station) Name() string {
	return s.Config.Info.Ref.Name()
}

// Runnables lists the background runners of the station.
func (s *Station) Runnables() []fx.Runnable {
	var runners []fx.Runnable
	for _, p := range s.Pumps {
		runners = append(runners, p)
	}
	runners = append(runners, fx.NamedRun("playback", fx.RunnableFunc(s.play)))
	if s.Registrar != nil {
		runners = append(runners, s.Registrar)
	}
	if s.Monitor != nil {
		runners = append(runners, s.Monitor)
	}
	return runners
}

// Run implements Runnable.
func (s *Station) Run(ctx context.Context) error {
	glog.Infof("station %s up, udp %q mqtt %q output %s",
		s.Name(), s.Config.Info.Meta.Listen, s.Config.MQTTBrokerURL, s.Config.Output)
	defer s.close()
	return fx.NewRunnerWith(ctx).Go(s.Runnables()...).Wait()
}

// play takes one message at a time off the queue.
func (s *Station) play(ctx context.Context) error {
	for {
		msg, err := s.Queue.Get(ctx)
		if err != nil {
			return err
		}
		report, err := s.Controller.Play(ctx, msg.Text)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			glog.Warningf("message from %s via %s rejected: %v", msg.Sender, msg.Source, err)
		case report.Err() != nil:
			glog.Warningf("played %q from %s with device failures:\n%v", msg.Text, msg.Sender, report.Err())
		default:
			glog.Infof("played %q from %s in %v", msg.Text, msg.Sender, report.Duration())
		}
	}
}

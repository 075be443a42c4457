package station

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/comm/udp"
	"github.com/robotalks/morse.go/pkg/env"
	"github.com/robotalks/morse.go/pkg/morse"
)

// Output backends.
const (
	OutputConsole = "console"
	OutputMQTT    = "mqtt"
	OutputNone    = "none"
)

// Config provides options to set up a station.
type Config struct {
	Info comm.StationInfo

	// Listen is the UDP address accepting text datagrams, empty disables.
	Listen string
	// MQTTBrokerURL specifies the MQTT broker, empty disables.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// Capacity bounds the encoded units of a message.
	Capacity int
	// QueueDepth is the number of messages waiting for playback.
	QueueDepth int
	// Overflow is the queue policy, "queue" or "drop". It applies once
	// QueueDepth messages are pending, so drop with a zero depth
	// discards every message arriving during playback.
	Overflow string
	// DisplayWidth is the character width of the display.
	DisplayWidth int
	// Output selects the device backend.
	Output string
	// Color enables ANSI colors on the console backend.
	Color bool
	// MonitorAddr serves the websocket event feed, empty disables.
	MonitorAddr string
	// TimingFile is a YAML timing profile.
	TimingFile string
	// Tempo multiplies every duration of the timing profile,
	// 0.5 plays twice as fast.
	Tempo float64
}

var defaultConfig = Config{
	Info: comm.StationInfo{
		Meta: comm.StationMeta{Description: "morse station"},
	},
	Listen:       udp.DefaultAddr,
	Capacity:     morse.DefaultCapacity,
	QueueDepth:   8,
	Overflow:     "queue",
	DisplayWidth: 16,
	Output:       OutputConsole,
	Color:        true,
	Tempo:        1,
}

func init() {
	defaultConfig.Info.Ref = comm.NewStationRef(env.StationID())
	loadEnv(&defaultConfig, os.Getenv)
}

func loadEnv(c *Config, getenv func(string) string) {
	if val := getenv("MORSE_ID"); val != "" {
		c.Info.Ref.ID = val
	}
	if val := getenv("MORSE_LISTEN"); val != "" {
		c.Listen = val
	}
	if val := getenv("MORSE_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv("MORSE_OUTPUT"); val != "" {
		c.Output = val
	}
	if val := getenv("MORSE_OVERFLOW"); val != "" {
		c.Overflow = val
	}
	if val := getenv("MORSE_MONITOR"); val != "" {
		c.MonitorAddr = val
	}
	if val := getenv("MORSE_TIMING"); val != "" {
		c.TimingFile = val
	}
	if val, err := strconv.Atoi(getenv("MORSE_CAPACITY")); err == nil {
		c.Capacity = val
	}
	if val, err := strconv.Atoi(getenv("MORSE_QUEUE")); err == nil {
		c.QueueDepth = val
	}
	if val, err := strconv.ParseFloat(getenv("MORSE_TEMPO"), 64); err == nil {
		c.Tempo = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	RegisterFlags(flag.CommandLine, &defaultConfig)
}

// RegisterFlags registers the options of c on a flag set.
func RegisterFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.Info.Ref.ID, "id", c.Info.Ref.ID, "Station ID")
	fs.StringVar(&c.Info.Meta.Description, "desc", c.Info.Meta.Description, "Station description")
	fs.StringVar(&c.Listen, "listen", c.Listen, "UDP listen address, empty disables")
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL, empty disables")
	fs.IntVar(&c.Capacity, "capacity", c.Capacity, "Maximum encoded units per message")
	fs.IntVar(&c.QueueDepth, "queue", c.QueueDepth, "Messages waiting for playback")
	fs.StringVar(&c.Overflow, "overflow", c.Overflow, "Policy when the queue is full: queue blocks sources, drop discards (use -queue 0 to drop whatever arrives during playback)")
	fs.IntVar(&c.DisplayWidth, "width", c.DisplayWidth, "Display width in characters")
	fs.StringVar(&c.Output, "output", c.Output, "Output backend: console, mqtt or none")
	fs.BoolVar(&c.Color, "color", c.Color, "ANSI colors on console output")
	fs.StringVar(&c.MonitorAddr, "ws", c.MonitorAddr, "Websocket monitor feed address, empty disables")
	fs.StringVar(&c.TimingFile, "timing", c.TimingFile, "YAML timing profile")
	fs.Float64Var(&c.Tempo, "tempo", c.Tempo, "Timing multiplier, below 1 plays faster")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the options are consistent.
func (c *Config) Validate() error {
	if !c.Info.Ref.IsValid() {
		return fmt.Errorf("station id must be specified")
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", c.Tempo)
	}
	if c.QueueDepth < 0 {
		return fmt.Errorf("queue depth must not be negative, got %d", c.QueueDepth)
	}
	if _, err := comm.ParsePolicy(c.Overflow); err != nil {
		return err
	}
	switch c.Output {
	case OutputConsole, OutputNone:
	case OutputMQTT:
		if c.MQTTBrokerURL == "" {
			return fmt.Errorf("output %q requires an MQTT broker", c.Output)
		}
	default:
		return fmt.Errorf("unknown output %q", c.Output)
	}
	if c.Listen == "" && c.MQTTBrokerURL == "" {
		return fmt.Errorf("at least one message source is required")
	}
	return nil
}

package sh

import (
	"flag"
	"os"
	"time"

	"github.com/robotalks/morse.go/pkg/comm/mqtt"
)

// Config provides options to reach stations.
type Config struct {
	// MQTTBrokerURL specifies the broker stations register with.
	MQTTBrokerURL string
	// Station is the default station reference for publish and watch.
	Station string
	// UDPAddr is where send delivers datagrams.
	UDPAddr string
	// MonitorURL is a websocket feed watched instead of MQTT when set.
	MonitorURL string
	// WatchDuration is how long watch runs by default.
	WatchDuration time.Duration
	// DiscoverTimeout bounds station discovery.
	DiscoverTimeout time.Duration
}

var defaultConfig = Config{
	MQTTBrokerURL:   "mqtt://localhost:1883/",
	UDPAddr:         "localhost:1234",
	WatchDuration:   10 * time.Second,
	DiscoverTimeout: mqtt.DefaultDiscoverTimeout,
}

func init() {
	if val := os.Getenv("MORSE_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("MORSE_STATION"); val != "" {
		defaultConfig.Station = val
	}
	if val := os.Getenv("MORSE_UDP_ADDR"); val != "" {
		defaultConfig.UDPAddr = val
	}
	if val := os.Getenv("MORSE_MONITOR_URL"); val != "" {
		defaultConfig.MonitorURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.Station, "station", defaultConfig.Station, "Station to publish to and watch.")
	flag.StringVar(&defaultConfig.UDPAddr, "udp", defaultConfig.UDPAddr, "Station UDP address for send.")
	flag.StringVar(&defaultConfig.MonitorURL, "ws", defaultConfig.MonitorURL, "Websocket monitor feed URL for watch.")
	flag.DurationVar(&defaultConfig.WatchDuration, "watch", defaultConfig.WatchDuration, "Default watch duration.")
	flag.DurationVar(&defaultConfig.DiscoverTimeout, "discover-timeout", defaultConfig.DiscoverTimeout, "Discovery timeout.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/comm/mqtt"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/morse"
	"github.com/robotalks/morse.go/pkg/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *Config
	// Target is the station used by publish and watch.
	Target *comm.StationRef

	connector *mqtt.Connector
}

const (
	shellKey       = "$shell"
	noTargetPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&EncodeCmd,
		&SendCmd,
		&DiscoverCmd,
		&UseCmd,
		&PublishCmd,
		&WatchCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(noTargetPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustHaveTarget wraps command func requiring a target station.
func MustHaveTarget(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Target == nil {
			c.Err(fmt.Errorf("no station selected, use 'use' first"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints StationInfo into friendly string for display.
func FormatInfo(info comm.StationInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	if info.Meta.Listen != "" {
		fmt.Fprintf(&w, " (udp %s)", info.Meta.Listen)
	}
	return w.String()
}

// FormatMessage prints a wire message as "Type text".
func FormatMessage(msg fx.Message) string {
	name := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
	if s, ok := msg.(msgs.SerializableMessage); ok {
		return name + " " + s.Serializable().String()
	}
	return name
}

// FormatEncoded prints one line per unit, e.g. "S ...".
func FormatEncoded(msg *morse.EncodedMessage) string {
	lines := make([]string, 0, msg.Len())
	for _, u := range msg.Units {
		if u.IsSeparator() {
			lines = append(lines, "  /")
			continue
		}
		lines = append(lines, fmt.Sprintf("%c %s", u.Char, u.Symbol))
	}
	return strings.Join(lines, "\n")
}

// EncodedJSON is the JSON form of an encoded message.
type EncodedJSON struct {
	Text     string   `json:"text"`
	Morse    string   `json:"morse"`
	Units    []string `json:"units"`
	Elements int      `json:"elements"`
}

// NewEncodedJSON converts an encoded message for JSON output.
func NewEncodedJSON(msg *morse.EncodedMessage) *EncodedJSON {
	out := &EncodedJSON{
		Text:     msg.Text(),
		Morse:    msg.String(),
		Units:    make([]string, 0, msg.Len()),
		Elements: msg.ElementCount(),
	}
	for _, u := range msg.Units {
		out.Units = append(out.Units, string(u.Symbol))
	}
	return out
}

// PrintJSON prints v as JSON.
func PrintJSON(c *ishell.Context, v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(string(out))
	return nil
}

// Connector returns the MQTT connector, connecting on first use.
func (s *Shell) Connector() (*mqtt.Connector, error) {
	if s.connector != nil {
		return s.connector, nil
	}
	conn, err := mqtt.NewConnector(s.Config.MQTTBrokerURL)
	if err != nil {
		return nil, err
	}
	conn.DiscoverTimeout = s.Config.DiscoverTimeout
	conn.Sender = "morsectl"
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", s.Config.MQTTBrokerURL, err)
	}
	s.connector = conn
	return conn, nil
}

// DiscoverStations discovers stations.
func (s *Shell) DiscoverStations(filter func(comm.StationInfo) bool) ([]comm.StationInfo, error) {
	conn, err := s.Connector()
	if err != nil {
		return nil, err
	}
	infoList, err := conn.Discover(context.TODO())
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]comm.StationInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// SelectStation discovers stations and asks for a choice.
func (s *Shell) SelectStation(filter func(comm.StationInfo) bool) (*comm.StationInfo, error) {
	infoList, err := s.DiscoverStations(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 stations discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which station?")
	}
	return &infoList[index], nil
}

// Use selects the target station.
func (s *Shell) Use(ref comm.StationRef) {
	s.Target = &ref
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
}

// Close releases the connector.
func (s *Shell) Close() {
	if s.connector != nil {
		s.connector.Close()
		s.connector = nil
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if s.Config.Station != "" {
		ref, err := comm.ParseStationRef(s.Config.Station)
		if err != nil {
			log.Fatalln(err)
		}
		s.Use(ref)
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}

package sh

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/comm/udp"
	"github.com/robotalks/morse.go/pkg/comm/websocket"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/morse"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/playback"
)

// EncodeCmd encodes text locally and prints the symbols.
var EncodeCmd = ishell.Cmd{
	Name: "encode",
	Help: "encode TEXT... - print the morse code of text",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		msg, err := morse.Encode(strings.Join(c.Args, " "))
		if errors.Is(err, morse.ErrCapacityExceeded) {
			c.Err(fmt.Errorf("%w: at most %d characters", err, morse.DefaultCapacity))
			return
		}
		if err != nil {
			c.Err(err)
			return
		}
		if s.OutputJSON {
			PrintJSON(c, NewEncodedJSON(msg))
			return
		}
		c.Println(FormatEncoded(msg))
	},
}

// SendCmd sends text to the station over UDP.
var SendCmd = ishell.Cmd{
	Name: "send",
	Help: "send TEXT... - send text to the station UDP address",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) == 0 {
			c.Err(fmt.Errorf("text expected"))
			return
		}
		if err := udp.Send(s.Config.UDPAddr, strings.Join(c.Args, " ")); err != nil {
			c.Err(err)
		}
	},
}

// DiscoverCmd discovers stations.
var DiscoverCmd = ishell.Cmd{
	Name: "discover",
	Help: "discover - list stations registered with the broker",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		infoList, err := s.DiscoverStations(nil)
		if err != nil {
			c.Err(err)
			return
		}
		if s.OutputJSON {
			PrintJSON(c, infoList)
			return
		}
		for _, info := range infoList {
			c.Println(FormatInfo(info))
		}
	},
}

// UseCmd selects the target station.
var UseCmd = ishell.Cmd{
	Name: "use",
	Help: "use [STATION] - select the station for publish and watch",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) > 0 {
			ref, err := comm.ParseStationRef(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s.Use(ref)
			return
		}
		info, err := s.SelectStation(nil)
		if err != nil {
			c.Err(err)
			return
		}
		if info == nil {
			c.Err(fmt.Errorf("no station found"))
			return
		}
		s.Use(info.Ref)
		c.Println(FormatInfo(*info))
	},
}

// PublishCmd sends text to the selected station over MQTT.
var PublishCmd = ishell.Cmd{
	Name: "publish",
	Help: "publish TEXT... - send text to the selected station over MQTT",
	Func: MustHaveTarget(func(c *ishell.Context) {
		s := ShellFrom(c)
		if len(c.Args) == 0 {
			c.Err(fmt.Errorf("text expected"))
			return
		}
		conn, err := s.Connector()
		if err != nil {
			c.Err(err)
			return
		}
		if err := conn.SendText(*s.Target, strings.Join(c.Args, " ")); err != nil {
			c.Err(err)
		}
	}),
}

// WatchCmd prints playback events for a while.
var WatchCmd = ishell.Cmd{
	Name: "watch",
	Help: "watch [SECONDS] [STATE] - print playback events, optionally until a state is reached",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		args, err := ParseWatchArgs(c.Args, s.Config.WatchDuration)
		if err != nil {
			c.Err(err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), args.Duration)
		defer cancel()
		show := func(msg fx.Message) {
			if s.OutputJSON {
				PrintJSON(c, msg)
			} else {
				c.Println(FormatMessage(msg))
			}
			if args.Reached(msg) {
				cancel()
			}
		}
		if s.Config.MonitorURL != "" {
			err = websocket.Watch(ctx, s.Config.MonitorURL, show)
		} else if s.Target == nil {
			err = fmt.Errorf("no station selected, use 'use' or -ws")
		} else if conn, cerr := s.Connector(); cerr != nil {
			err = cerr
		} else {
			err = conn.Watch(ctx, *s.Target, show)
		}
		if err != nil && ctx.Err() == nil {
			c.Err(err)
		}
	},
}

// WatchArgs are the parsed arguments of watch.
type WatchArgs struct {
	Duration time.Duration
	// Until stops watching once a status reports this state.
	Until *playback.State
}

// ParseWatchArgs parses the optional seconds and state arguments of watch.
func ParseWatchArgs(args []string, def time.Duration) (WatchArgs, error) {
	w := WatchArgs{Duration: def}
	if len(args) > 0 {
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil || secs <= 0 {
			return w, fmt.Errorf("invalid duration %q", args[0])
		}
		w.Duration = time.Duration(secs * float64(time.Second))
	}
	if len(args) > 1 {
		state, err := playback.ParseState(args[1])
		if err != nil {
			return w, err
		}
		w.Until = &state
	}
	return w, nil
}

// Reached indicates msg is a status in the Until state.
func (w WatchArgs) Reached(msg fx.Message) bool {
	status, ok := msg.(*msgs.PlaybackStatus)
	if !ok || w.Until == nil {
		return false
	}
	state, err := playback.ParseState(status.State)
	return err == nil && state == *w.Until
}

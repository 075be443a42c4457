package mqtt

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/output"
)

// RemoteDevices drives output devices attached to another node.
// Each write is published as a DeviceState and waits for the broker,
// a failed publish is a device write failure.
type RemoteDevices struct {
	Client       *Client
	Ref          comm.StationRef
	DisplayWidth int
}

// NewRemoteDevices creates RemoteDevices.
func NewRemoteDevices(client *Client, ref comm.StationRef, width int) *RemoteDevices {
	return &RemoteDevices{Client: client, Ref: ref, DisplayWidth: width}
}

func (d *RemoteDevices) send(state *msgs.DeviceState) error {
	ch := output.Channel(state.Channel)
	token, err := d.Client.PubMsg(DeviceTopic(d.Ref, ch), state)
	if err != nil {
		return err
	}
	return d.Client.Wait(token)
}

// Clear implements output.TextDisplay.
func (d *RemoteDevices) Clear() error {
	return d.send(&msgs.DeviceState{Channel: uint32(output.ChannelDisplay), Clear: true})
}

// Print implements output.TextDisplay.
func (d *RemoteDevices) Print(text string) error {
	return d.send(&msgs.DeviceState{Channel: uint32(output.ChannelDisplay), Text: text})
}

// Width implements output.TextDisplay.
func (d *RemoteDevices) Width() int {
	return d.DisplayWidth
}

// SetColor implements output.Indicator.
func (d *RemoteDevices) SetColor(c output.Color) error {
	return d.send(&msgs.DeviceState{
		Channel: uint32(output.ChannelLight),
		Red:     uint32(c.Red),
		Green:   uint32(c.Green),
		Blue:    uint32(c.Blue),
	})
}

// SetTone implements output.ToneGenerator.
func (d *RemoteDevices) SetTone(t output.Tone) error {
	return d.send(&msgs.DeviceState{
		Channel: uint32(output.ChannelTone),
		FreqHz:  t.FreqHz,
		Duty:    uint32(t.Duty),
	})
}

// Sinks creates the three sinks over the remote devices.
func (d *RemoteDevices) Sinks() *output.Sinks {
	return output.NewSinks(d, d, d)
}

// DeviceNode applies DeviceState messages of a station to local devices.
type DeviceNode struct {
	Client  *Client
	Ref     comm.StationRef
	Display output.TextDisplay
	Light   output.Indicator
	Tone    output.ToneGenerator
}

// Name implements Named.
func (n *DeviceNode) Name() string {
	return "device-node"
}

// Run implements Runnable.
func (n *DeviceNode) Run(ctx context.Context) error {
	sub := n.Client.Sub(Topic(n.Ref, TopicDevice+"/+"), n.handle)
	defer sub.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (n *DeviceNode) handle(topic string, payload []byte) {
	msg, err := msgs.Unmarshal(payload)
	if err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	state, ok := msg.(*msgs.DeviceState)
	if !ok {
		glog.Warningf("%s: unexpected %T", topic, msg)
		return
	}
	if !strings.HasSuffix(topic, "/"+output.Channel(state.Channel).String()) {
		glog.Warningf("%s: state for %s ignored", topic, output.Channel(state.Channel))
		return
	}
	if err := n.Apply(state); err != nil {
		glog.Warningf("%s: %v", topic, err)
	}
}

// Apply writes a DeviceState to the local device of its channel.
func (n *DeviceNode) Apply(state *msgs.DeviceState) error {
	switch ch := output.Channel(state.Channel); ch {
	case output.ChannelDisplay:
		if state.Clear {
			return n.Display.Clear()
		}
		return n.Display.Print(state.Text)
	case output.ChannelLight:
		return n.Light.SetColor(output.Color{
			Red:   uint16(state.Red),
			Green: uint16(state.Green),
			Blue:  uint16(state.Blue),
		})
	case output.ChannelTone:
		return n.Tone.SetTone(output.Tone{FreqHz: state.FreqHz, Duty: uint16(state.Duty)})
	default:
		return fmt.Errorf("unknown channel %d", state.Channel)
	}
}

package mqtt

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/msgs"
)

// TextSource receives text submitted to a station topic.
// Payloads are either raw UTF-8 or a Typed TextCommand.
type TextSource struct {
	*comm.ChanReader

	topic string
	sub   *Subscription
}

// NewTextSource subscribes the text topic of a station.
func NewTextSource(client *Client, ref comm.StationRef) *TextSource {
	s := &TextSource{
		ChanReader: comm.NewChanReader(1),
		topic:      Topic(ref, TopicText),
	}
	s.sub = client.Sub(s.topic, s.handle)
	return s
}

// Close implements io.Closer.
func (s *TextSource) Close() error {
	s.ChanReader.Close()
	return s.sub.Close()
}

func (s *TextSource) handle(topic string, payload []byte) {
	d := comm.Datagram{Payload: payload, Sender: "mqtt", Received: time.Now()}
	if cmd := decodeTextCommand(payload); cmd != nil {
		d.Payload = []byte(cmd.Text)
		if cmd.Sender != "" {
			d.Sender = cmd.Sender
		}
	}
	if !s.Push(d) {
		glog.V(2).Infof("text source closed, ignore %q", topic)
	}
}

func decodeTextCommand(payload []byte) *msgs.TextCommand {
	msg, err := msgs.Unmarshal(payload)
	if err != nil {
		return nil
	}
	cmd, _ := msg.(*msgs.TextCommand)
	return cmd
}

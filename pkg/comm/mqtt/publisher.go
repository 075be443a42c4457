package mqtt

import (
	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/comm"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/playback"
)

// NewEventPublisher creates an Observer publishing channel events and
// playback status of a station. Publishing never blocks playback.
func NewEventPublisher(client *Client, ref comm.StationRef, dropped func() uint64) *playback.EventStream {
	events, status := Topic(ref, TopicEvents), Topic(ref, TopicStatus)
	return &playback.EventStream{
		Dropped: dropped,
		Emit: func(msg fx.Message) {
			topic := events
			if _, ok := msg.(*msgs.PlaybackStatus); ok {
				topic = status
			}
			if _, err := client.PubMsg(topic, msg); err != nil {
				glog.Warningf("publish %s: %v", topic, err)
			}
		},
	}
}

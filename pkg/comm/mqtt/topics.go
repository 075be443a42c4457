package mqtt

import (
	"github.com/robotalks/morse.go/pkg/comm"
	"github.com/robotalks/morse.go/pkg/output"
)

// Topic suffixes under a station name.
const (
	TopicText   = "text"
	TopicEvents = "events"
	TopicStatus = "status"
	TopicMeta   = "meta"
	TopicDevice = "dev"
)

// Topic returns the topic of a station.
func Topic(ref comm.StationRef, suffix string) string {
	return ref.Name() + "/" + suffix
}

// DeviceTopic returns the topic driving a remote device channel.
func DeviceTopic(ref comm.StationRef, ch output.Channel) string {
	return Topic(ref, TopicDevice+"/"+ch.String())
}

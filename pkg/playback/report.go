package playback

import (
	"time"

	"github.com/robotalks/morse.go/pkg/framework"
)

// Report summarizes the playback of one message.
type Report struct {
	Text     string
	Units    int
	Elements int
	Started  time.Time
	Finished time.Time
	Canceled bool
	// Errors collects device write failures, playback continues past them.
	Errors framework.AggregatedError
}

// Duration is the playback time.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Err returns the aggregated device failures if any.
func (r *Report) Err() error {
	return r.Errors.Aggregate()
}

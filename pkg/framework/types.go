package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Message defines the abstract message carried between
// a station and its peers.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}

// TimeSource provides the current time.
type TimeSource interface {
	Time() time.Time
}

package comm

import (
	"fmt"
	"strings"
)

// StationType is the type segment of every station reference.
const StationType = "morse"

// StationRef is a reference to a station.
type StationRef struct {
	// Type is the station type.
	Type string
	// ID is unique ID of the station.
	ID string
}

// NewStationRef creates a reference of StationType.
func NewStationRef(id string) StationRef {
	return StationRef{Type: StationType, ID: id}
}

// ParseStationRef parses "type/id" or a bare id.
func ParseStationRef(s string) (StationRef, error) {
	items := strings.Split(s, "/")
	var ref StationRef
	switch len(items) {
	case 1:
		ref = NewStationRef(items[0])
	case 2:
		ref = StationRef{Type: items[0], ID: items[1]}
	default:
		return ref, fmt.Errorf("invalid station %q", s)
	}
	if !ref.IsValid() {
		return ref, fmt.Errorf("invalid station %q", s)
	}
	return ref, nil
}

// Name retrieves the name from ref, it is also the topic prefix.
func (r StationRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates StationRef is valid.
func (r StationRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// StationMeta describes a station.
type StationMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	// Listen is the UDP address accepting text datagrams.
	Listen string `json:"listen,omitempty"`
}

// StationInfo provides information of a station.
type StationInfo struct {
	Ref  StationRef
	Meta StationMeta
}

// Package msgs defines the wire messages exchanged with a station.
package msgs

// Messages are protobuf encoded and wrapped in a Typed envelope so a
// single topic or socket can carry several kinds.
//
// Commands flow towards a station, events flow out of it.

// Package env provides host identity for stations.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

// AppID scopes the protected machine ID to this application.
const AppID = "morse-station"

// IDLength is the length of a generated station ID.
const IDLength = 12

// MachineID retrieves the unique ID identifying the machine.
func MachineID() (string, error) {
	return machineid.ProtectedID(AppID)
}

// StationID returns a short stable ID for this host. It falls back to
// the hostname when the machine ID is unavailable.
func StationID() string {
	id, err := MachineID()
	if err != nil || id == "" {
		if id, err = os.Hostname(); err != nil || id == "" {
			return "local"
		}
		return id
	}
	if len(id) > IDLength {
		id = id[:IDLength]
	}
	return id
}

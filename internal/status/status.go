// Package status holds the manual availability status store and the
// effective status resolver that reconciles it with live presence.
package status

import "fmt"

// Status is a user-chosen availability value. It is advisory: actual
// connectivity comes from the presence channel and always wins for the
// "connected at all" bit.
type Status string

const (
	Online  Status = "online"
	Away    Status = "away"
	DND     Status = "dnd"
	Offline Status = "offline"
)

// Valid reports whether s is one of the four defined statuses.
func (s Status) Valid() bool {
	switch s {
	case Online, Away, DND, Offline:
		return true
	default:
		return false
	}
}

// Parse converts a raw string into a Status.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q", raw)
	}
	return s, nil
}

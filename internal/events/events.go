// Package events distributes engine events (presence ticks, manual status
// changes) to interested observers. Presence and status are independent
// asynchronous sources; both publish through the same dispatcher so
// consumers can re-derive views without knowing which source moved.
package events

// Type identifies an event kind.
type Type string

const (
	// PresenceSynced carries the full membership snapshot after the
	// presence channel reaches the synced state.
	PresenceSynced Type = "presence:synced"

	// PresenceJoined and PresenceLeft carry incremental membership changes.
	PresenceJoined Type = "presence:joined"
	PresenceLeft   Type = "presence:left"

	// StatusChanged carries a manual status value for one user.
	StatusChanged Type = "status:changed"

	// StatusDeleted signals that a user's manual status row was removed.
	StatusDeleted Type = "status:deleted"
)

// Event is a single engine event. UserID is set for per-user events;
// Members is set for PresenceSynced; Status is set for StatusChanged.
type Event struct {
	Type    Type
	UserID  string
	Status  string
	Members []string
}

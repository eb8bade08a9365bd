package status

// PresenceSource reports live channel membership. Presence is ground truth
// for connectivity: a user absent from the channel is offline no matter
// what the manual map says.
type PresenceSource interface {
	Contains(userID string) bool
}

// ManualSource reads the manual status map.
type ManualSource interface {
	Get(userID string) (Status, bool)
}

// Resolver combines live presence with the manual status map into one
// displayed status per user.
type Resolver struct {
	presence PresenceSource
	manual   ManualSource
}

// NewResolver creates a resolver over the two status sources.
func NewResolver(presence PresenceSource, manual ManualSource) *Resolver {
	return &Resolver{presence: presence, manual: manual}
}

// Effective returns the displayed status for userID. It is pure and total,
// recomputed on every call rather than cached, so each source can update
// independently without invalidation logic. Precedence:
//
//  1. Not in the presence set: offline, regardless of the manual value.
//  2. Present with manual "offline": offline (invisible mode).
//  3. Present with manual away/dnd: that value.
//  4. Present with no manual entry: online.
func (r *Resolver) Effective(userID string) Status {
	if !r.presence.Contains(userID) {
		return Offline
	}

	manual, ok := r.manual.Get(userID)
	if !ok {
		return Online
	}

	switch manual {
	case Offline:
		return Offline
	case Away, DND:
		return manual
	default:
		return Online
	}
}

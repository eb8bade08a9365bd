// Package models defines the persisted row shapes shared by repositories
// and the engine. Rows are validated at the I/O boundary so the engine
// never sees untyped or out-of-range data.
package models

import (
	"time"

	"github.com/mkovalev/playsquad/internal/traits"
)

// Profile is a user's matchmaking profile: display data plus the computed
// trait vector and archetype. An empty Archetype means the trait assessment
// has not been completed.
type Profile struct {
	UserID    string        `json:"user_id"`
	Nickname  string        `json:"nickname"`
	AvatarURL string        `json:"avatar_url"`
	Archetype string        `json:"archetype"`
	Vector    traits.Vector `json:"vector"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// StatusRow is a persisted manual status entry.
type StatusRow struct {
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

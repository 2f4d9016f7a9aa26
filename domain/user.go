package domain

import "time"

// Profile is the durable user record owned by the identity provider and
// mirrored in the document store. The presence core only ever touches
// IsOnline and LastSeen.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Image     string
	IsOnline  bool
	LastSeen  *time.Time
	CreatedAt time.Time
}

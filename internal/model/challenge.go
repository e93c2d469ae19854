package model

import "time"

// Pairing is a pending challenge from one named player to another.
// At most one pairing exists per FromName.
type Pairing struct {
	FromName   string
	ToName     string
	Deadline   time.Time
	Accepted   bool
	Generation uint64 // bumped on every re-challenge, used to detect stale expiry
}

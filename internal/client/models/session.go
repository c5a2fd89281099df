package models

import "time"

// Session is the process-lifetime authentication state. The zero value is
// the unauthenticated initial state.
type Session struct {
	ID            string
	Authenticated bool
	Profile       Profile
	StartedAt     time.Time
}

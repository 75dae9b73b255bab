package models

import "time"

// RefreshToken is an opaque, single-use credential exchanged for a new
// token pair.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}

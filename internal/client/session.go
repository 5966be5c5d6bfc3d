package client

import "time"

// Session is the signed-in identity a Client acts for. It is owned by the
// caller and passed to every call; there is no hidden global session.
type Session struct {
	UserID    uint
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Active reports whether the session identifies a user.
func (s *Session) Active() bool {
	return s != nil && s.UserID != 0
}

// Clear ends the session.
func (s *Session) Clear() {
	*s = Session{}
}

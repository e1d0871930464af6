package entity

import "time"

// Session is the server-side record behind an issued API token.
// A user holds at most one valid session; logging in again revokes the previous one.
type Session struct {
	ID        string     // Token ID embedded in the JWT as "jti"
	UserID    uint       // Associated user ID
	UserAgent string     // Client's User-Agent header at login
	IPAddress string     // Client's IP address at login
	CreatedAt time.Time  // Session creation time
	ExpiresAt time.Time  // Session expiration time
	RevokedAt *time.Time // Revocation time (nil if active)
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}

// Authorizes reports whether a token claiming userID may use this session.
func (s *Session) Authorizes(userID uint) bool {
	return s.IsValid() && s.UserID == userID
}

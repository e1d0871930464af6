package adapters

import (
	"time"

	"recipe_backend/internal/feature/auth/domain/entity"
)

// SessionModel is the GORM model for the auth_sessions table.
// It is only used when Redis is disabled.
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:36"` // uuid token ID
	UserID    uint       `gorm:"index;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "auth_sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

// sessionModelFromEntity converts a domain entity to a GORM model.
func sessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: truncate(s.UserAgent, 512),
		IPAddress: truncate(s.IPAddress, 45),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}

// truncate はカラム長を超えたクライアント由来の値を切り詰めます。
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

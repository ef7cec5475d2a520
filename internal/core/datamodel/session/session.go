package session

import "time"

type Session struct {
	ID             string    `gorm:"primaryKey;column:id"`
	UserID         string    `gorm:"column:user_id;index;not null"`
	FirstName      string    `gorm:"column:first_name"`
	LastName       string    `gorm:"column:last_name"`
	Email          string    `gorm:"column:email;not null"`
	Role           string    `gorm:"column:role;not null"`
	UpstreamCookie string    `gorm:"column:upstream_cookie"`
	ExpiresAt      time.Time `gorm:"column:expires_at;index;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// Notice is a notification waiting to be delivered with the session's next response.
type Notice struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"column:session_id;index;not null"`
	Level     string    `gorm:"column:level;not null"`
	Message   string    `gorm:"column:message;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Notice) TableName() string {
	return "session_notices"
}

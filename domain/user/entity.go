package user

import (
	"time"
)

// User represents a registered forum user.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Username     string `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Claims represents the identity carried by a validated access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

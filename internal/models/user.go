package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an admin console user.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	FirstName    string     `json:"first_name" gorm:"size:100"`
	LastName     string     `json:"last_name" gorm:"size:100"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

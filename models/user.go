package models

import "time"

type User struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"`
	Username    string       `gorm:"size:150;unique;not null"`
	Email       string       `gorm:"size:254;unique;not null"`
	Password    string       `gorm:"not null"` // bcrypt hash
	FirstName   string       `gorm:"size:150"`
	LastName    string       `gorm:"size:150"`
	IsStaff     bool         `gorm:"not null;default:false"`
	IsSuperuser bool         `gorm:"not null;default:false"`
	Profile     *UserProfile `gorm:"constraint:OnDelete:CASCADE"`
	DateJoined  time.Time    `gorm:"autoCreateTime"`
}

// UserProfile is created with the user at registration, or lazily on the
// first profile read for users that predate it.
type UserProfile struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	UserID      uint       `gorm:"unique;not null"`
	Phone       string     `gorm:"size:20"`
	Address     string     `gorm:"size:255"`
	City        string     `gorm:"size:100"`
	State       string     `gorm:"size:100"`
	PostalCode  string     `gorm:"size:20"`
	Country     string     `gorm:"size:100"`
	DateOfBirth *time.Time `gorm:"type:date"`
	Avatar      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

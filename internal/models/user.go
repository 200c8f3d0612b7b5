package models

import "time"

// User represents a registered account. Email is the login identifier.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(254);not null"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	FirstName string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName  string    `json:"last_name" gorm:"type:varchar(150)"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Follow is a subscription of UserID to the recipes of AuthorID.
type Follow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follow_user_author"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

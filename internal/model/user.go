package model

import "time"

// User is a storage account identified by email. There is no password,
// the client identifies itself by id or by a session token.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      *string   `json:"name" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}

package model

import "time"

// ActivityLog is an append-only audit line describing a user action.
type ActivityLog struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"not null;index:idx_activity_user_time,priority:1"`
	Action    string    `json:"action" gorm:"size:512;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;autoCreateTime;index:idx_activity_user_time,priority:2"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Activity action prefixes.
const (
	ActionUploaded        = "File uploaded: "
	ActionFavoriteAdded   = "File added to favorites: "
	ActionFavoriteRemoved = "File removed from favorites: "
	ActionDeleted         = "File deleted: "
)

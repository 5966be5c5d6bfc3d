package model

import "time"

// File is the metadata row of one stored blob. A user can hold a given
// filename only once.
type File struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_files_user_filename,priority:1"`
	Filename  string    `json:"filename" gorm:"size:255;not null;uniqueIndex:idx_files_user_filename,priority:2"`
	FilePath  string    `json:"file_path" gorm:"size:512;not null"`
	FileType  string    `json:"file_type" gorm:"size:255;not null"`
	FileSize  int64     `json:"file_size" gorm:"not null"`
	Favorite  bool      `json:"favorite" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// URL is derived from the public base URL, never persisted.
	URL string `json:"url" gorm:"-"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// StorageStats aggregates a user's files.
type StorageStats struct {
	FileCount     int64  `json:"file_count"`
	FavoriteCount int64  `json:"favorite_count"`
	TotalBytes    int64  `json:"total_bytes"`
	TotalMB       string `json:"total_mb" gorm:"-"`
}

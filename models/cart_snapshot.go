package models

import "time"

// CartSnapshot stores one storefront session's serialized cart blob. The blob
// is opaque to the database; the cart engine owns its format.
type CartSnapshot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionKey string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_session_storage" json:"session_key"`
	StorageKey string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_session_storage" json:"storage_key"`
	Blob       string    `gorm:"type:longtext" json:"blob"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

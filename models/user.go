package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a local snapshot of profile-service data needed for bets.
// Owned and managed solely by this service's sync worker; immutable
// from the client's perspective except the viewer's own profile.
type User struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username       string  `gorm:"index;not null" json:"username"`
	AvatarURL      *string `json:"avatar_url,omitempty"`

	Rating   float64 `json:"rating" gorm:"default:0"`   // 0–5
	WinRate  float64 `json:"win_rate" gorm:"default:0"` // percentage
	Verified bool    `json:"verified" gorm:"default:false"`

	JoinedDate time.Time `json:"joined_date"`
	Location   *string   `json:"location,omitempty"`
	Interests  *string   `json:"interests,omitempty"` // comma-separated, mirrors profile service

	Earnings float64 `json:"earnings" gorm:"default:0"`
	Rank     int     `json:"rank" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RemoteProfile matches the JSON the profile sync service returns.
// Used by the sync worker only.
type RemoteProfile struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	Rating     float64   `json:"rating"`
	WinRate    float64   `json:"win_rate"`
	Verified   bool      `json:"verified"`
	Location   *string   `json:"location,omitempty"`
	Interests  *string   `json:"interests,omitempty"`
	Earnings   float64   `json:"earnings"`
	Rank       int       `json:"rank"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

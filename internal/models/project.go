package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is the tenant boundary: channels, issues, and API keys hang off it.
type Project struct {
	ProjectID      uint64 `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"uniqueIndex;size:255;not null"`
	Description    string `gorm:"size:255"`
	TimezoneOffset string `gorm:"size:6;not null;default:'+00:00'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Channels       []Channel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Issues         []Issue   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	APIKeys        []APIKey  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// APIKey authenticates requests on the external API surface.
type APIKey struct {
	APIKeyID  uint64 `gorm:"primaryKey;autoIncrement"`
	ProjectID uint64 `gorm:"index;not null"`
	Value     string `gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// TableName overrides the table name for APIKey
func (APIKey) TableName() string {
	return "api_keys"
}

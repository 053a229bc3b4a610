package models

import (
	"time"

	"github.com/feedlane/feedlane/internal/types"
)

// Channel is a feedback collection bucket with its own field schema.
type Channel struct {
	ChannelID   uint64 `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint64 `gorm:"not null;uniqueIndex:uq_channels_project_name,priority:1"`
	Name        string `gorm:"size:255;not null;uniqueIndex:uq_channels_project_name,priority:2"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Fields      []Field    `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
	Feedbacks   []Feedback `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}

// Field is one typed column definition applied to all feedback in a channel.
type Field struct {
	FieldID     uint64            `gorm:"primaryKey;autoIncrement"`
	ChannelID   uint64            `gorm:"not null;uniqueIndex:uq_fields_channel_key,priority:1;uniqueIndex:uq_fields_channel_name,priority:1"`
	Name        string            `gorm:"size:255;not null;uniqueIndex:uq_fields_channel_name,priority:2"`
	Key         string            `gorm:"size:255;not null;uniqueIndex:uq_fields_channel_key,priority:2"`
	Format      types.FieldFormat `gorm:"size:32;not null"`
	Type        types.FieldType   `gorm:"size:32;not null;default:'default'"`
	Status      types.FieldStatus `gorm:"size:32;not null;default:'active'"`
	Description string            `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Options     []Option `gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE"`
}

// Option is a selectable value of a select/multiSelect field.
// Soft-deleted options keep their row with the key prefixed "deleted_" and
// DeletedAt stamped, so a later re-create with the same key+name revives them.
type Option struct {
	OptionID  uint64 `gorm:"primaryKey;autoIncrement"`
	FieldID   uint64 `gorm:"index;not null"`
	Name      string `gorm:"size:255;not null"`
	Key       string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// TableName overrides the table name for Channel
func (Channel) TableName() string {
	return "channels"
}

// TableName overrides the table name for Field
func (Field) TableName() string {
	return "fields"
}

// TableName overrides the table name for Option
func (Option) TableName() string {
	return "options"
}

// ActiveOptionKeys returns the option keys that are not soft-deleted.
func (f Field) ActiveOptionKeys() []string {
	keys := make([]string, 0, len(f.Options))
	for _, o := range f.Options {
		if o.DeletedAt == nil {
			keys = append(keys, o.Key)
		}
	}
	return keys
}

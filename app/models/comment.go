package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment hangs off a confession. AuthorName is denormalized the same way as
// on Confession and is rewritten when the author changes their username.
type Comment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ConfessionID uint           `gorm:"index" json:"confession_id"`
	Confession   Confession     `gorm:"foreignKey:ConfessionID" json:"confession,omitempty"`
	SubjectID    string         `gorm:"type:varchar(64);index:idx_comment_subject" json:"subject_id"`
	SubjectType  string         `gorm:"type:varchar(20);index:idx_comment_subject" json:"subject_type"`
	AuthorName   string         `gorm:"type:varchar(64)" json:"author_name"`
	Content      string         `gorm:"type:text" json:"content" validate:"required,min=1"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

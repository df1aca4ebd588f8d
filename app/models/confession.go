package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Confession is a short text post. AuthorName is denormalized so feeds render
// without a join; the username-change flow bulk-updates it by subject key.
type Confession struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	SubjectID   string         `gorm:"type:varchar(64);index:idx_confession_subject" json:"subject_id"`
	SubjectType string         `gorm:"type:varchar(20);index:idx_confession_subject" json:"subject_type"`
	AuthorName  string         `gorm:"type:varchar(64);index" json:"author_name"`
	Content     string         `gorm:"type:text" json:"content" validate:"required,min=1,max=2000"`
	ViewCount   uint           `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (cf *Confession) Validate() error {
	v := validator.New()

	return v.Struct(cf)
}

// NewConfession builds a confession authored by the given user.
func NewConfession(author *User, content string) (*Confession, error) {
	cf := &Confession{
		UUID:        uuid.NewString(),
		SubjectID:   author.SubjectID,
		SubjectType: author.SubjectType,
		AuthorName:  author.Username,
		Content:     content,
	}

	if err := cf.Validate(); err != nil {
		return nil, err
	}

	return cf, nil
}

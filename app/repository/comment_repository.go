package repository

import (
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// commentRepository implements the CommentRepository interface
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository instance
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create stores a new comment
func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// ListByConfession returns all comments on a confession, oldest first
func (r *commentRepository) ListByConfession(confessionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("confession_id = ?", confessionID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// RenameAuthor rewrites the denormalized author name on every comment
// authored by the subject.
func (r *commentRepository) RenameAuthor(subject usercontext.Subject, newName string) error {
	return r.db.Model(&models.Comment{}).
		Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type)).
		Update("author_name", newName).Error
}

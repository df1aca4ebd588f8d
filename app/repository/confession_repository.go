package repository

import (
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// confessionRepository implements the ConfessionRepository interface
type confessionRepository struct {
	db *gorm.DB
}

// NewConfessionRepository creates a new confession repository instance
func NewConfessionRepository(db *gorm.DB) ConfessionRepository {
	return &confessionRepository{db: db}
}

// Create stores a new confession
func (r *confessionRepository) Create(confession *models.Confession) error {
	return r.db.Create(confession).Error
}

// GetByID retrieves a confession by its numeric primary key
func (r *confessionRepository) GetByID(id uint) (*models.Confession, error) {
	var confession models.Confession
	err := r.db.First(&confession, id).Error
	if err != nil {
		return nil, err
	}
	return &confession, nil
}

// GetByUUID retrieves a confession by its public UUID
func (r *confessionRepository) GetByUUID(uuid string) (*models.Confession, error) {
	var confession models.Confession
	err := r.db.Where("uuid = ?", uuid).First(&confession).Error
	if err != nil {
		return nil, err
	}
	return &confession, nil
}

// ListRecent returns confessions in reverse chronological order
func (r *confessionRepository) ListRecent(offset, limit int) ([]models.Confession, error) {
	var confessions []models.Confession
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&confessions).Error
	return confessions, err
}

// CountBySubject returns the number of confessions authored by the subject
func (r *confessionRepository) CountBySubject(subject usercontext.Subject) (int64, error) {
	var count int64
	err := r.db.Model(&models.Confession{}).
		Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type)).
		Count(&count).Error
	return count, err
}

// RenameAuthor rewrites the denormalized author name on every confession
// authored by the subject.
func (r *confessionRepository) RenameAuthor(subject usercontext.Subject, newName string) error {
	return r.db.Model(&models.Confession{}).
		Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type)).
		Update("author_name", newName).Error
}

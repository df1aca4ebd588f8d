package repository

import (
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
)

// auditLogRepository implements the AuditLogRepository interface
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append stores one audit entry
func (r *auditLogRepository) Append(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// ListRecent returns audit entries in reverse chronological order
func (r *auditLogRepository) ListRecent(offset, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

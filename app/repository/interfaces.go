package repository

import (
	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetBySubject(subject usercontext.Subject) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	UsernameExists(username string) (bool, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ConfessionRepository defines the interface for confession-related database operations
type ConfessionRepository interface {
	Create(confession *models.Confession) error
	GetByID(id uint) (*models.Confession, error)
	GetByUUID(uuid string) (*models.Confession, error)
	ListRecent(offset, limit int) ([]models.Confession, error)
	CountBySubject(subject usercontext.Subject) (int64, error)
	RenameAuthor(subject usercontext.Subject, newName string) error
}

// CommentRepository defines the interface for comment-related database operations
type CommentRepository interface {
	Create(comment *models.Comment) error
	ListByConfession(confessionID uint) ([]models.Comment, error)
	RenameAuthor(subject usercontext.Subject, newName string) error
}

// AuditLogRepository records admin actions; appends are best-effort.
type AuditLogRepository interface {
	Append(entry *models.AuditLog) error
	ListRecent(offset, limit int) ([]models.AuditLog, error)
}

package cosmetics

import (
	"strings"

	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/tokens"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// Repository provides the DB operations a purchase needs. Transaction hands
// the callback a repository bound to the transaction, so the token debit and
// the attribute write either both commit or both roll back.
type Repository interface {
	GetUserBySubject(subject usercontext.Subject) (*models.User, error)
	SaveUser(user *models.User) error
	UsernameExists(username string) (bool, error)
	RenameAuthoredContent(subject usercontext.Subject, newName string) error
	DebitIfSufficient(subject usercontext.Subject, amount int64) (int64, bool, error)
	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db     *gorm.DB
	ledger tokens.Repository
}

// NewRepository creates a cosmetics repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db, ledger: tokens.NewRepository(db)}
}

func (r *gormRepository) GetUserBySubject(subject usercontext.Subject) (*models.User, error) {
	var user models.User
	err := r.db.Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) SaveUser(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *gormRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) RenameAuthoredContent(subject usercontext.Subject, newName string) error {
	err := r.db.Model(&models.Confession{}).
		Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type)).
		Update("author_name", newName).Error
	if err != nil {
		return err
	}
	return r.db.Model(&models.Comment{}).
		Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type)).
		Update("author_name", newName).Error
}

func (r *gormRepository) DebitIfSufficient(subject usercontext.Subject, amount int64) (int64, bool, error) {
	return r.ledger.DebitIfSufficient(subject, amount)
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

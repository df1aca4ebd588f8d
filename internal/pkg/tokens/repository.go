package tokens

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// Repository provides DB operations used by the ledger service.
//
// Credit, DebitIfSufficient and SetBalance are single-statement operations:
// the database decides races between concurrent requests, never an
// application-side read-compare-write.
type Repository interface {
	GetBalance(subject usercontext.Subject) (int64, error)
	Credit(subject usercontext.Subject, amount int64) (int64, error)
	DebitIfSufficient(subject usercontext.Subject, amount int64) (int64, bool, error)
	SetBalance(subject usercontext.Subject, value int64) error
	ClaimDaily(subject usercontext.Subject, amount int64, now time.Time) (bool, int64, error)
	AppendAudit(entry *models.AuditLog) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// GetBalance returns the current balance, or gorm.ErrRecordNotFound when no
// row exists yet.
func (r *gormRepository) GetBalance(subject usercontext.Subject) (int64, error) {
	var row models.TokenBalance
	err := r.subjectQuery(subject).First(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Balance, nil
}

// Credit increments the balance by amount, creating the row on first use.
// The increment happens inside the upsert statement itself.
func (r *gormRepository) Credit(subject usercontext.Subject, amount int64) (int64, error) {
	row := models.TokenBalance{
		SubjectID:   subject.ID,
		SubjectType: string(subject.Type),
		Balance:     amount,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subject_id"},
			{Name: "subject_type"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("token_balances.balance + VALUES(balance)"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}
	return r.GetBalance(subject)
}

// DebitIfSufficient decrements the balance by amount only when it covers the
// amount. Returns the balance after the attempt and whether the debit
// happened. A missing row counts as balance 0.
func (r *gormRepository) DebitIfSufficient(subject usercontext.Subject, amount int64) (int64, bool, error) {
	res := r.db.Model(&models.TokenBalance{}).
		Where("subject_id = ? AND subject_type = ? AND balance >= ?", subject.ID, string(subject.Type), amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, false, res.Error
	}

	current, err := r.GetBalance(subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return current, res.RowsAffected > 0, nil
}

// SetBalance upserts the row to an absolute value, regardless of its current
// balance.
func (r *gormRepository) SetBalance(subject usercontext.Subject, value int64) error {
	row := models.TokenBalance{
		SubjectID:   subject.ID,
		SubjectType: string(subject.Type),
		Balance:     value,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subject_id"},
			{Name: "subject_type"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    value,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&row).Error
}

// ClaimDaily credits amount at most once per UTC day. The once-per-day gate
// and the credit are one UPDATE statement, so two concurrent claims cannot
// both pass.
func (r *gormRepository) ClaimDaily(subject usercontext.Subject, amount int64, now time.Time) (bool, int64, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	nowUTC := now.UTC()

	res := r.db.Model(&models.TokenBalance{}).
		Where("subject_id = ? AND subject_type = ? AND (last_daily_reward_at IS NULL OR last_daily_reward_at < ?)",
			subject.ID, string(subject.Type), dayStart).
		Updates(map[string]interface{}{
			"balance":              gorm.Expr("balance + ?", amount),
			"last_daily_reward_at": nowUTC,
		})
	if res.Error != nil {
		return false, 0, res.Error
	}
	if res.RowsAffected > 0 {
		balance, err := r.GetBalance(subject)
		return true, balance, err
	}

	// Either the row is missing or the reward was already claimed today.
	balance, err := r.GetBalance(subject)
	if err == nil {
		return false, balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, 0, err
	}

	row := models.TokenBalance{
		SubjectID:         subject.ID,
		SubjectType:       string(subject.Type),
		Balance:           amount,
		LastDailyRewardAt: &nowUTC,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			// Lost the race against a concurrent first claim.
			balance, berr := r.GetBalance(subject)
			return false, balance, berr
		}
		return false, 0, err
	}
	return true, row.Balance, nil
}

// AppendAudit stores one audit entry.
func (r *gormRepository) AppendAudit(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *gormRepository) subjectQuery(subject usercontext.Subject) *gorm.DB {
	return r.db.Where("subject_id = ? AND subject_type = ?", subject.ID, string(subject.Type))
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

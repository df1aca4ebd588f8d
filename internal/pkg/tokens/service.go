package tokens

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/env"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// DefaultDailyReward is the fallback daily login grant when
// TOKENS_DAILY_REWARD is not configured.
const DefaultDailyReward = 50

// Service is the single source of truth for every account's token balance.
// All credits and debits for the whole application funnel through it.
type Service struct {
	repo        Repository
	dailyReward int64
	now         func() time.Time
}

// NewService creates a ledger service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:        repo,
		dailyReward: dailyRewardFromEnv(),
		now:         time.Now,
	}
}

// NewServiceFromDB creates a ledger service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

func dailyRewardFromEnv() int64 {
	raw := env.GetEnv("TOKENS_DAILY_REWARD", strconv.Itoa(DefaultDailyReward))
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return DefaultDailyReward
	}
	return v
}

// DailyReward returns the configured daily login grant.
func (s *Service) DailyReward() int64 {
	return s.dailyReward
}

// GetBalance returns the subject's balance. A missing row reads as 0 and is
// never an error.
func (s *Service) GetBalance(subject usercontext.Subject) (int64, error) {
	balance, err := s.repo.GetBalance(subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// Grant credits amount to the subject, creating the balance row on first use.
func (s *Service) Grant(subject usercontext.Subject, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.Credit(subject, amount)
}

// Debit removes amount from the subject's balance. The decrement is
// conditional on sufficiency inside the store, so a concurrent debit can
// never drive the balance negative. On failure the balance is unchanged and
// the returned error carries the exact shortfall.
func (s *Service) Debit(subject usercontext.Subject, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, ok, err := s.repo.DebitIfSufficient(subject, amount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return balance, &InsufficientTokensError{
			Needed:   amount - balance,
			Current:  balance,
			Required: amount,
		}
	}
	return balance, nil
}

// Reset sets the subject's balance to 0 unconditionally.
func (s *Service) Reset(subject usercontext.Subject) error {
	return s.repo.SetBalance(subject, 0)
}

// ClaimDailyReward grants the fixed daily amount at most once per UTC day.
// Returns whether the grant happened and the balance afterwards.
func (s *Service) ClaimDailyReward(subject usercontext.Subject) (bool, int64, error) {
	return s.repo.ClaimDaily(subject, s.dailyReward, s.now())
}

// AdminGrant credits an arbitrary positive amount on behalf of an admin and
// records an audit entry. Audit failure is logged, never propagated: the
// balance change stands.
func (s *Service) AdminGrant(actor usercontext.UserContext, subject usercontext.Subject, amount int64) (int64, error) {
	balance, err := s.Grant(subject, amount)
	if err != nil {
		return 0, err
	}
	s.audit(actor, subject, models.AUDIT_TOKEN_GRANT, map[string]interface{}{"amount": amount, "balance": balance})
	return balance, nil
}

// AdminReset zeroes a subject's balance on behalf of an admin and records an
// audit entry.
func (s *Service) AdminReset(actor usercontext.UserContext, subject usercontext.Subject) error {
	if err := s.Reset(subject); err != nil {
		return err
	}
	s.audit(actor, subject, models.AUDIT_TOKEN_RESET, map[string]interface{}{"balance": 0})
	return nil
}

func (s *Service) audit(actor usercontext.UserContext, subject usercontext.Subject, action string, meta map[string]interface{}) {
	blob, err := json.Marshal(meta)
	if err != nil {
		blob = []byte("{}")
	}
	entry := &models.AuditLog{
		ActorSubjectID: actor.Subject.ID,
		ActorEmail:     actor.Email,
		Action:         action,
		SubjectID:      subject.ID,
		SubjectType:    string(subject.Type),
		Metadata:       string(blob),
	}
	if err := s.repo.AppendAudit(entry); err != nil {
		log.Printf("audit append failed for %s on %s/%s: %v", action, subject.Type, subject.ID, err)
	}
}

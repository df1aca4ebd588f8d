package cosmetics

import (
	"strings"

	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/tokens"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// Service translates a cosmetic choice into a token cost, validates it,
// debits the ledger and persists the attribute. Debit and attribute write run
// in one transaction, so a failed write rolls the debit back by construction.
type Service struct {
	repo    Repository
	catalog Catalog
}

// NewService creates a cosmetics service from an injected repository and
// price list.
func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// NewServiceFromDB creates a cosmetics service from a GORM DB handle with the
// environment-configured catalog.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), CatalogFromEnv())
}

// Catalog returns the active price list.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// PurchaseResult reports a completed priced operation.
type PurchaseResult struct {
	User    *models.User `json:"user"`
	Cost    int64        `json:"cost"`
	Balance int64        `json:"balance"`
}

// ApplySolidColor charges the flat solid-color price and sets the color.
// Any active gradient is cleared; the color joins the purchase history.
func (s *Service) ApplySolidColor(subject usercontext.Subject, color string) (*PurchaseResult, error) {
	if !ValidHexColor(color) {
		return nil, ErrInvalidColor
	}

	var result *PurchaseResult
	err := s.repo.Transaction(func(r Repository) error {
		user, err := loadAnonymousUser(r, subject)
		if err != nil {
			return err
		}

		cost := s.catalog.SolidColor
		balance, err := debit(r, subject, cost)
		if err != nil {
			return err
		}

		user.SetSolidColor(color)
		if err := r.SaveUser(user); err != nil {
			return err
		}

		result = &PurchaseResult{User: user, Cost: cost, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyGradient charges the gradient base price plus any missing color slots
// and sets the gradient. Any active solid color is cleared. Slots already
// owned are reused for free and never decrease.
func (s *Service) ApplyGradient(subject usercontext.Subject, colors []string) (*PurchaseResult, error) {
	if err := ValidateGradient(colors); err != nil {
		return nil, err
	}

	var result *PurchaseResult
	err := s.repo.Transaction(func(r Repository) error {
		user, err := loadAnonymousUser(r, subject)
		if err != nil {
			return err
		}

		cost := s.catalog.GradientPrice(len(colors), user.PurchasedGradientColorSlots)
		balance, err := debit(r, subject, cost)
		if err != nil {
			return err
		}

		user.SetGradient(colors, s.catalog.RequiredSlots(len(colors)))
		if err := r.SaveUser(user); err != nil {
			return err
		}

		result = &PurchaseResult{User: user, Cost: cost, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PurchaseAnimatedGradient enables the animated gradient effect, once.
// A repurchase attempt fails before any tokens move.
func (s *Service) PurchaseAnimatedGradient(subject usercontext.Subject) (*PurchaseResult, error) {
	var result *PurchaseResult
	err := s.repo.Transaction(func(r Repository) error {
		user, err := loadAnonymousUser(r, subject)
		if err != nil {
			return err
		}
		if user.AnimatedGradientEnabled {
			return ErrAlreadyOwned
		}

		cost := s.catalog.AnimatedGradient
		balance, err := debit(r, subject, cost)
		if err != nil {
			return err
		}

		user.AnimatedGradientEnabled = true
		if err := r.SaveUser(user); err != nil {
			return err
		}

		result = &PurchaseResult{User: user, Cost: cost, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PurchaseGIFAvatar enables animated avatar uploads, once.
func (s *Service) PurchaseGIFAvatar(subject usercontext.Subject) (*PurchaseResult, error) {
	var result *PurchaseResult
	err := s.repo.Transaction(func(r Repository) error {
		user, err := loadAnonymousUser(r, subject)
		if err != nil {
			return err
		}
		if user.GifProfileEnabled {
			return ErrAlreadyOwned
		}

		cost := s.catalog.GIFAvatar
		balance, err := debit(r, subject, cost)
		if err != nil {
			return err
		}

		user.GifProfileEnabled = true
		if err := r.SaveUser(user); err != nil {
			return err
		}

		result = &PurchaseResult{User: user, Cost: cost, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveColor clears both the solid color and the gradient. Free: purchase
// history and balance stay untouched.
func (s *Service) RemoveColor(subject usercontext.Subject) (*models.User, error) {
	var user *models.User
	err := s.repo.Transaction(func(r Repository) error {
		var err error
		user, err = loadAnonymousUser(r, subject)
		if err != nil {
			return err
		}
		user.ClearUsernameColors()
		return r.SaveUser(user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeUsername charges the username-change price, swaps the username and
// rewrites the author name on everything the account ever posted. All of it
// commits or none of it does.
func (s *Service) ChangeUsername(subject usercontext.Subject, newUsername string) (*PurchaseResult, error) {
	if err := ValidateAnonymousUsername(newUsername); err != nil {
		return nil, err
	}
	normalized := strings.ToLower(strings.TrimSpace(newUsername))

	var result *PurchaseResult
	err := s.repo.Transaction(func(r Repository) error {
		user, err := loadAnonymousUser(r, subject)
		if err != nil {
			return err
		}
		if strings.EqualFold(user.Username, normalized) {
			return ErrSameUsername
		}
		taken, err := r.UsernameExists(normalized)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		cost := s.catalog.UsernameChange
		balance, err := debit(r, subject, cost)
		if err != nil {
			return err
		}

		user.RenameTo(normalized)
		if err := r.SaveUser(user); err != nil {
			return err
		}
		if err := r.RenameAuthoredContent(subject, normalized); err != nil {
			return err
		}

		result = &PurchaseResult{User: user, Cost: cost, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadAnonymousUser(r Repository, subject usercontext.Subject) (*models.User, error) {
	user, err := r.GetUserBySubject(subject)
	if err != nil {
		return nil, err
	}
	if !user.IsAnonymous() {
		return nil, ErrNotAnonymous
	}
	return user, nil
}

func debit(r Repository, subject usercontext.Subject, amount int64) (int64, error) {
	balance, ok, err := r.DebitIfSufficient(subject, amount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &tokens.InsufficientTokensError{
			Needed:   amount - balance,
			Current:  balance,
			Required: amount,
		}
	}
	return balance, nil
}

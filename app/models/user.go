package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/pkg/usercontext"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"

	// AnonymousUsernamePrefix is reserved for locally issued accounts so they
	// can never collide with provider nicknames.
	AnonymousUsernamePrefix = "anon_"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SubjectID   string `gorm:"type:varchar(64);uniqueIndex:idx_subject;not null" json:"subject_id"`
	SubjectType string `gorm:"type:varchar(20);uniqueIndex:idx_subject;not null" json:"subject_type" validate:"oneof=third_party anonymous"`

	// Username is stored lowercase; uniqueness is case-insensitive by
	// construction.
	Username     string `gorm:"uniqueIndex;type:varchar(64)" json:"username" validate:"required,min=3,max=64"`
	PasswordHash string `gorm:"type:text" json:"-"`
	Email        string `gorm:"type:varchar(200);default:null" json:"email,omitempty"`
	Role         string `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status       string `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`

	PreviousUsernames StringList `gorm:"type:json" json:"previous_usernames"`

	// Cosmetic profile. At most one of UsernameColor / UsernameColorGradient
	// is set at a time.
	UsernameColor               *string      `gorm:"type:varchar(8);default:null" json:"username_color"`
	UsernameColorGradient       StringList   `gorm:"type:json" json:"username_color_gradient"`
	PurchasedSolidColors        StringList   `gorm:"type:json" json:"purchased_solid_colors"`
	PurchasedGradientColors     GradientList `gorm:"type:json" json:"purchased_gradient_colors"`
	PurchasedGradientColorSlots int          `gorm:"default:0" json:"purchased_gradient_color_slots"`
	AnimatedGradientEnabled     bool         `gorm:"default:false" json:"animated_gradient_enabled"`
	GifProfileEnabled           bool         `gorm:"default:false" json:"gif_profile_enabled"`

	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// Subject returns the ledger key identifying this account.
func (u *User) Subject() usercontext.Subject {
	return usercontext.Subject{ID: u.SubjectID, Type: usercontext.SubjectType(u.SubjectType)}
}

// CreateAnonymousUser builds a locally issued account with a fresh subject id.
// The username must already carry the reserved prefix.
func CreateAnonymousUser(username string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		SubjectID:    uuid.NewString(),
		SubjectType:  string(usercontext.SubjectAnonymous),
		Username:     strings.ToLower(username),
		PasswordHash: pw,
		Role:         ROLE_USER,
		Status:       STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

// CreateThirdPartyUser builds an account backed by an external identity
// provider. The provider user id becomes the subject id.
func CreateThirdPartyUser(providerUserID, nickname, email string) (*User, error) {
	u := &User{
		SubjectID:   providerUserID,
		SubjectType: string(usercontext.SubjectThirdParty),
		Username:    strings.ToLower(nickname),
		Email:       email,
		Role:        ROLE_USER,
		Status:      STATUS_ACTIVE,
	}

	err := u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsAnonymous reports whether this is a locally issued account
func (u *User) IsAnonymous() bool {
	return u.SubjectType == string(usercontext.SubjectAnonymous)
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hashedPassword
	return nil
}

// SetSolidColor applies a solid username color. Any active gradient is
// cleared; the color is recorded in the purchase history if new.
func (u *User) SetSolidColor(color string) {
	u.UsernameColor = &color
	u.UsernameColorGradient = nil
	if !u.PurchasedSolidColors.Contains(color) {
		u.PurchasedSolidColors = append(u.PurchasedSolidColors, color)
	}
}

// SetGradient applies a username gradient. Any active solid color is cleared;
// the exact sequence is recorded in the purchase history if new, and the slot
// count is raised to cover the sequence length. Slots never decrease.
func (u *User) SetGradient(colors []string, requiredSlots int) {
	u.UsernameColor = nil
	u.UsernameColorGradient = StringList(colors)
	if !u.PurchasedGradientColors.ContainsSequence(colors) {
		stored := make([]string, len(colors))
		copy(stored, colors)
		u.PurchasedGradientColors = append(u.PurchasedGradientColors, stored)
	}
	if requiredSlots > u.PurchasedGradientColorSlots {
		u.PurchasedGradientColorSlots = requiredSlots
	}
}

// ClearUsernameColors removes both the solid color and the gradient. Purchase
// history stays untouched.
func (u *User) ClearUsernameColors() {
	u.UsernameColor = nil
	u.UsernameColorGradient = nil
}

// RenameTo swaps the username and appends the old one to the history.
func (u *User) RenameTo(newUsername string) {
	u.PreviousUsernames = append(u.PreviousUsernames, u.Username)
	u.Username = strings.ToLower(newUsername)
}

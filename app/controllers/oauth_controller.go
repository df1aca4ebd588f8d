package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/app/repository"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// HandleOAuthCallback completes the provider flow and logs the user in.
// The provider user id becomes the third-party subject id.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": fmt.Sprintf("OAuth failed: %v", err)})
	}

	subject := usercontext.Subject{ID: u.UserID, Type: usercontext.SubjectThirdParty}
	repo := repository.GetGlobalFactory().GetUserRepository()

	appUser, err := repo.GetBySubject(subject)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load account"})
		}

		nickname := firstNonEmpty(u.NickName, u.Name, "user")
		username := sanitizeProviderUsername(nickname)
		if taken, terr := repo.UsernameExists(username); terr == nil && taken {
			// Provider nicknames are not unique across providers.
			username = fmt.Sprintf("%s_%s", username, shortID(u.UserID))
		}

		appUser, err = models.CreateThirdPartyUser(u.UserID, username, u.Email)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": err.Error()})
		}
		if err := repo.Create(appUser); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create account"})
		}
	}

	if err := establishSession(c, appUser); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to start session"})
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthLogout ends the provider session and the app session.
func HandleOAuthLogout(c *fiber.Ctx) error {
	_ = gothfiber.Logout(c)
	return HandleAuthLogout(c)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// sanitizeProviderUsername lowercases a provider nickname and strips
// characters the username rules do not allow.
func sanitizeProviderUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = "user"
	}
	if len(out) > 32 {
		out = out[:32]
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

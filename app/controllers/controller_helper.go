package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/cosmetics"
	"github.com/confessly/confessly/internal/pkg/middleware"
	"github.com/confessly/confessly/internal/pkg/session"
	"github.com/confessly/confessly/internal/pkg/tokens"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

var validate = validator.New()

// parseBody decodes and validates a JSON request body, responding 400 itself
// on failure. Callers stop when ok is false.
func parseBody(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
		return false
	}
	if err := validate.Struct(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		return false
	}
	return true
}

// requireSubject resolves the authenticated subject or responds 401.
func requireSubject(c *fiber.Ctx) (usercontext.Subject, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.Subject.IsZero() {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
		return usercontext.Subject{}, false
	}
	return userCtx.Subject, true
}

// respondServiceError maps domain errors onto HTTP status codes and JSON
// bodies. Insufficient-funds responses carry the exact shortfall so the UI
// can prompt the user to earn more tokens.
func respondServiceError(c *fiber.Ctx, err error) error {
	if ite, ok := tokens.AsInsufficientTokens(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":          "Insufficient tokens",
			"tokensNeeded":   ite.Needed,
			"currentBalance": ite.Current,
			"required":       ite.Required,
		})
	}

	switch {
	case errors.Is(err, tokens.ErrInvalidAmount),
		errors.Is(err, cosmetics.ErrInvalidColor),
		errors.Is(err, cosmetics.ErrInvalidGradient),
		errors.Is(err, cosmetics.ErrInvalidUsername),
		errors.Is(err, cosmetics.ErrSameUsername),
		errors.Is(err, cosmetics.ErrUsernameTaken),
		errors.Is(err, cosmetics.ErrAlreadyOwned),
		errors.Is(err, cosmetics.ErrNotAnonymous):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Subject not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Persistence failure"})
	}
}

// establishSession logs the user into the app session.
func establishSession(c *fiber.Ctx, user *models.User) error {
	isAdmin := user.Role == models.ROLE_ADMIN || middleware.IsPrivilegedEmail(user.Email)

	if err := session.SetSessionValue(c, usercontext.KeySubjectID, user.SubjectID); err != nil {
		return err
	}
	if err := session.SetSessionValue(c, usercontext.KeySubjectType, user.SubjectType); err != nil {
		return err
	}
	if err := session.SetSessionValue(c, usercontext.KeyUsername, user.Username); err != nil {
		return err
	}
	if err := session.SetSessionValue(c, usercontext.KeyEmail, user.Email); err != nil {
		return err
	}
	adminFlag := "false"
	if isAdmin {
		adminFlag = "true"
	}
	return session.SetSessionValue(c, usercontext.KeyIsAdmin, adminFlag)
}

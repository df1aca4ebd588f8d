package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/app/repository"
	"github.com/confessly/confessly/internal/pkg/cosmetics"
	"github.com/confessly/confessly/internal/pkg/env"
	"github.com/confessly/confessly/internal/pkg/hcaptcha"
	"github.com/confessly/confessly/internal/pkg/session"
)

type registerRequest struct {
	Username     string `json:"username" validate:"required,min=8,max=36"`
	Password     string `json:"password" validate:"required,min=6,max=128"`
	CaptchaToken string `json:"captcha_token"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleAuthRegister creates an anonymous account. The username must carry
// the reserved prefix; the password is stored as a bcrypt hash only.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if !parseBody(c, &req) {
		return nil
	}

	if env.GetEnv("HCAPTCHA_ENABLED", "false") == "true" {
		if ok, err := hcaptcha.Verify(req.CaptchaToken); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
		}
	}

	if err := cosmetics.ValidateAnonymousUsername(req.Username); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	taken, err := repo.UsernameExists(req.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check username"})
	}
	if taken {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": cosmetics.ErrUsernameTaken.Error()})
	}

	user, err := models.CreateAnonymousUser(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repo.Create(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create account"})
	}

	if err := establishSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to start session"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subject_id":   user.SubjectID,
		"subject_type": user.SubjectType,
		"username":     user.Username,
	})
}

// HandleAuthLogin verifies an anonymous account's credentials and starts a
// session.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if !parseBody(c, &req) {
		return nil
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid username or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load account"})
	}

	if !user.IsAnonymous() || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid username or password"})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Account disabled"})
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update account"})
	}

	if err := establishSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to start session"})
	}

	return c.JSON(fiber.Map{
		"subject_id":   user.SubjectID,
		"subject_type": user.SubjectType,
		"username":     user.Username,
	})
}

// HandleAuthLogout destroys the caller's session.
func HandleAuthLogout(c *fiber.Ctx) error {
	if err := session.DestroySession(c); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to end session"})
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

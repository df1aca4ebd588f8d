package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/app/repository"
	"github.com/confessly/confessly/internal/pkg/session"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

type changeUsernameRequest struct {
	NewUsername string `json:"new_username" validate:"required,min=4,max=36"`
}

// HandleChangeUsername renames an anonymous account for a token fee. The
// rename, the ledger debit and the author-name rewrite on existing posts
// commit as one transaction.
func HandleChangeUsername(c *fiber.Ctx) error {
	subject, ok := requireSubject(c)
	if !ok {
		return nil
	}

	var req changeUsernameRequest
	if !parseBody(c, &req) {
		return nil
	}

	result, err := cosmeticService.ChangeUsername(subject, req.NewUsername)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Keep the session display name in sync with the new username.
	if err := session.SetSessionValue(c, usercontext.KeyUsername, result.User.Username); err != nil {
		log.Printf("failed to refresh session username for %s: %v", subject.ID, err)
	}

	return c.JSON(fiber.Map{
		"username": result.User.Username,
		"cost":     result.Cost,
		"balance":  result.Balance,
	})
}

func userRepositoryGetBySubject(subject usercontext.Subject) (*models.User, error) {
	return repository.GetGlobalFactory().GetUserRepository().GetBySubject(subject)
}

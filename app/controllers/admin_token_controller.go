package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/repository"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

type adminGrantRequest struct {
	SubjectType string `json:"subject_type" validate:"required,oneof=third_party anonymous"`
	SubjectID   string `json:"subject_id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
}

type adminResetRequest struct {
	SubjectType string `json:"subject_type" validate:"required,oneof=third_party anonymous"`
	SubjectID   string `json:"subject_id" validate:"required"`
}

// HandleAdminGrantTokens credits an arbitrary positive amount to any subject
// and records an audit entry. Admin only (guarded in the router).
func HandleAdminGrantTokens(c *fiber.Ctx) error {
	var req adminGrantRequest
	if !parseBody(c, &req) {
		return nil
	}

	subject := usercontext.Subject{ID: req.SubjectID, Type: usercontext.SubjectType(req.SubjectType)}
	if err := ensureSubjectExists(subject); err != nil {
		return respondServiceError(c, err)
	}

	balance, err := tokenService.AdminGrant(usercontext.GetUserContext(c), subject, req.Amount)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"balance": balance})
}

// HandleAdminResetTokens zeroes any subject's balance and records an audit
// entry. Admin only.
func HandleAdminResetTokens(c *fiber.Ctx) error {
	var req adminResetRequest
	if !parseBody(c, &req) {
		return nil
	}

	subject := usercontext.Subject{ID: req.SubjectID, Type: usercontext.SubjectType(req.SubjectType)}
	if err := ensureSubjectExists(subject); err != nil {
		return respondServiceError(c, err)
	}

	if err := tokenService.AdminReset(usercontext.GetUserContext(c), subject); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"balance": 0})
}

// ensureSubjectExists maps an unknown subject to gorm.ErrRecordNotFound so
// admin typos surface as 404 instead of silently creating balance rows.
func ensureSubjectExists(subject usercontext.Subject) error {
	_, err := repository.GetGlobalFactory().GetUserRepository().GetBySubject(subject)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return err
}

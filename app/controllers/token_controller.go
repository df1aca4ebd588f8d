package controllers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/confessly/confessly/internal/pkg/cache"
	"github.com/confessly/confessly/internal/pkg/database"
	"github.com/confessly/confessly/internal/pkg/tokens"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

var tokenService *tokens.Service

// InitializeTokenController wires the ledger service to the database.
func InitializeTokenController() {
	tokenService = tokens.NewServiceFromDB(database.GetDB())
}

// HandleClaimDailyReward grants the daily login reward, at most once per UTC
// day. Repeat claims are a no-op, not an error.
func HandleClaimDailyReward(c *fiber.Ctx) error {
	subject, ok := requireSubject(c)
	if !ok {
		return nil
	}

	// Redis fast path: skip the DB when this subject already claimed today.
	// The conditional UPDATE in the ledger stays the source of truth.
	marker := dailyMarkerKey(subject)
	if _, err := cache.Get(marker); err == nil {
		balance, berr := tokenService.GetBalance(subject)
		if berr != nil {
			return respondServiceError(c, berr)
		}
		return c.JSON(fiber.Map{"granted": false, "balance": balance})
	}

	granted, balance, err := tokenService.ClaimDailyReward(subject)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := cache.Set(marker, "1", untilNextUTCDay()); err != nil {
		log.Printf("failed to set daily reward marker for %s/%s: %v", subject.Type, subject.ID, err)
	}

	return c.JSON(fiber.Map{"granted": granted, "balance": balance})
}

// HandleGetBalance returns the caller's balance. Admins may query any
// subject via subject_id/subject_type query parameters.
func HandleGetBalance(c *fiber.Ctx) error {
	subject, ok := requireSubject(c)
	if !ok {
		return nil
	}

	if qid := c.Query("subject_id"); qid != "" {
		if !usercontext.IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Only admins may query other subjects"})
		}
		qtype := usercontext.SubjectType(c.Query("subject_type"))
		if !qtype.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid subject_type"})
		}
		subject = usercontext.Subject{ID: qid, Type: qtype}
	}

	balance, err := tokenService.GetBalance(subject)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"balance": balance})
}

func dailyMarkerKey(subject usercontext.Subject) string {
	return fmt.Sprintf("tokens:daily:%s:%s:%s", subject.Type, subject.ID, time.Now().UTC().Format("2006-01-02"))
}

func untilNextUTCDay() time.Duration {
	now := time.Now().UTC()
	next := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return next.Sub(now)
}

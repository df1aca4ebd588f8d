package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/app/repository"
	"github.com/confessly/confessly/internal/pkg/metrics/counter"
	"github.com/confessly/confessly/internal/pkg/shortener"
	"github.com/confessly/confessly/internal/pkg/statistics"
)

const confessionPageSize = 25

type createConfessionRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// HandleCreateConfession posts a new confession under the caller's current
// display name.
func HandleCreateConfession(c *fiber.Ctx) error {
	subject, ok := requireSubject(c)
	if !ok {
		return nil
	}

	var req createConfessionRequest
	if !parseBody(c, &req) {
		return nil
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Confession content must not be empty"})
	}

	author, err := userRepositoryGetBySubject(subject)
	if err != nil {
		return respondServiceError(c, err)
	}

	confession, err := models.NewConfession(author, content)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if err := repository.GetGlobalFactory().GetConfessionRepository().Create(confession); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(confessionResponse(confession))
}

// HandleListConfessions returns the latest confessions, newest first.
func HandleListConfessions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	confessions, err := repository.GetGlobalFactory().GetConfessionRepository().ListRecent((page-1)*confessionPageSize, confessionPageSize)
	if err != nil {
		return respondServiceError(c, err)
	}

	items := make([]fiber.Map, 0, len(confessions))
	for i := range confessions {
		items = append(items, confessionResponse(&confessions[i]))
	}
	return c.JSON(fiber.Map{"page": page, "confessions": items})
}

// HandleGetConfession returns one confession with its comments.
func HandleGetConfession(c *fiber.Ctx) error {
	confession, err := repository.GetGlobalFactory().GetConfessionRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		return respondServiceError(c, err)
	}

	// View counting is buffered in Redis and flushed in batches.
	if err := counter.AddConfessionView(confession.ID); err != nil {
		log.Printf("failed to count view for confession %d: %v", confession.ID, err)
	}

	comments, err := repository.GetGlobalFactory().GetCommentRepository().ListByConfession(confession.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := confessionResponse(confession)
	list := make([]fiber.Map, 0, len(comments))
	for _, cm := range comments {
		list = append(list, fiber.Map{
			"author":     cm.AuthorName,
			"content":    cm.Content,
			"created_at": cm.CreatedAt,
		})
	}
	resp["comments"] = list
	return c.JSON(resp)
}

// HandleConfessionShareLink resolves a short Base62 share code to the
// confession it points at.
func HandleConfessionShareLink(c *fiber.Ctx) error {
	id := shortener.DecodeID(c.Params("sharelink"))
	if id == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown share link"})
	}

	confession, err := repository.GetGlobalFactory().GetConfessionRepository().GetByID(id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Redirect("/api/v1/confessions/"+confession.UUID, fiber.StatusSeeOther)
}

// HandleGetStatistics returns the cached public counters.
func HandleGetStatistics(c *fiber.Ctx) error {
	stats := statistics.GetStatistics()
	return c.JSON(fiber.Map{
		"total_confessions": stats.TotalConfessions,
		"today_confessions": stats.TodayConfessions,
		"total_users":       stats.TotalUsers,
	})
}

func confessionResponse(conf *models.Confession) fiber.Map {
	return fiber.Map{
		"uuid":       conf.UUID,
		"author":     conf.AuthorName,
		"content":    conf.Content,
		"share_code": shortener.EncodeID(conf.ID),
		"view_count": conf.ViewCount,
		"created_at": conf.CreatedAt,
	}
}

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/cosmetics"
	"github.com/confessly/confessly/internal/pkg/database"
	"github.com/confessly/confessly/internal/pkg/utils"
)

var cosmeticService *cosmetics.Service

// InitializeCosmeticController wires the cosmetics service to the database.
func InitializeCosmeticController() {
	cosmeticService = cosmetics.NewServiceFromDB(database.GetDB())
}

const (
	colorTypeSolid            = "solid"
	colorTypeGradient         = "gradient"
	colorTypeRemove           = "remove"
	colorTypeAnimatedGradient = "purchase-animated-gradient"
	colorTypeGIFAvatar        = "purchase-gif-avatar"
)

type usernameColorRequest struct {
	ColorType      string   `json:"color_type" validate:"required,oneof=solid gradient remove purchase-animated-gradient purchase-gif-avatar"`
	Color          string   `json:"color"`
	GradientColors []string `json:"gradient_colors"`
}

// HandleSetUsernameColor is the single endpoint behind every username color
// action: apply a solid color, apply a gradient, clear colors, or unlock the
// animated gradient / GIF avatar features.
func HandleSetUsernameColor(c *fiber.Ctx) error {
	subject, ok := requireSubject(c)
	if !ok {
		return nil
	}

	var req usernameColorRequest
	if !parseBody(c, &req) {
		return nil
	}

	switch req.ColorType {
	case colorTypeSolid:
		result, err := cosmeticService.ApplySolidColor(subject, req.Color)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(purchaseResponse(result))
	case colorTypeGradient:
		result, err := cosmeticService.ApplyGradient(subject, req.GradientColors)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(purchaseResponse(result))
	case colorTypeAnimatedGradient:
		result, err := cosmeticService.PurchaseAnimatedGradient(subject)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(purchaseResponse(result))
	case colorTypeGIFAvatar:
		result, err := cosmeticService.PurchaseGIFAvatar(subject)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(purchaseResponse(result))
	case colorTypeRemove:
		user, err := cosmeticService.RemoveColor(subject)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(fiber.Map{"cost": 0, "profile": cosmeticProfile(user)})
	}

	// Unreachable: the validator pins color_type to the cases above.
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Unknown color_type"})
}

// HandleGetUsernameColor returns the caller's cosmetic state and prices.
func HandleGetUsernameColor(c *fiber.Ctx) error {
	subject, ok := requireSubject(c)
	if !ok {
		return nil
	}

	user, err := userRepositoryGetBySubject(subject)
	if err != nil {
		return respondServiceError(c, err)
	}
	balance, err := tokenService.GetBalance(subject)
	if err != nil {
		return respondServiceError(c, err)
	}

	catalog := cosmeticService.Catalog()
	return c.JSON(fiber.Map{
		"profile": cosmeticProfile(user),
		"balance": balance,
		"prices": fiber.Map{
			"solid_color":       catalog.SolidColor,
			"gradient_base":     catalog.GradientBase,
			"gradient_slot":     catalog.GradientSlot,
			"animated_gradient": catalog.AnimatedGradient,
			"gif_avatar":        catalog.GIFAvatar,
			"username_change":   catalog.UsernameChange,
		},
	})
}

func purchaseResponse(result *cosmetics.PurchaseResult) fiber.Map {
	return fiber.Map{
		"cost":    result.Cost,
		"balance": result.Balance,
		"profile": cosmeticProfile(result.User),
	}
}

func cosmeticProfile(user *models.User) fiber.Map {
	return fiber.Map{
		"username":                  user.Username,
		"avatar_url":                utils.GetGravatarURL(user.Email, 200),
		"username_color":            user.UsernameColor,
		"username_color_gradient":   user.UsernameColorGradient,
		"purchased_solid_colors":    user.PurchasedSolidColors,
		"purchased_gradient_colors": user.PurchasedGradientColors,
		"gradient_color_slots":      user.PurchasedGradientColorSlots,
		"animated_gradient":         user.AnimatedGradientEnabled,
		"gif_avatar":                user.GifProfileEnabled,
	}
}

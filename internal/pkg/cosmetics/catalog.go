package cosmetics

import (
	"strconv"

	"github.com/confessly/confessly/internal/pkg/env"
)

// Catalog is the price list for cosmetic perks. Prices are configuration:
// every entry can be overridden through the environment.
type Catalog struct {
	SolidColor         int64 // flat price per solid color apply
	GradientBase       int64 // flat price per gradient apply (up to the free colors)
	GradientSlot       int64 // price per extra color slot beyond the free ones
	AnimatedGradient   int64 // one-time
	GIFAvatar          int64 // one-time
	UsernameChange     int64 // per change
	FreeGradientColors int   // gradient colors included in the base price
}

// DefaultCatalog returns the stock price list.
func DefaultCatalog() Catalog {
	return Catalog{
		SolidColor:         250,
		GradientBase:       500,
		GradientSlot:       25,
		AnimatedGradient:   500,
		GIFAvatar:          1000,
		UsernameChange:     1000,
		FreeGradientColors: 3,
	}
}

// CatalogFromEnv builds the price list from environment overrides on top of
// the defaults.
func CatalogFromEnv() Catalog {
	c := DefaultCatalog()
	c.SolidColor = envPrice("COSMETICS_PRICE_SOLID_COLOR", c.SolidColor)
	c.GradientBase = envPrice("COSMETICS_PRICE_GRADIENT", c.GradientBase)
	c.GradientSlot = envPrice("COSMETICS_PRICE_GRADIENT_SLOT", c.GradientSlot)
	c.AnimatedGradient = envPrice("COSMETICS_PRICE_ANIMATED_GRADIENT", c.AnimatedGradient)
	c.GIFAvatar = envPrice("COSMETICS_PRICE_GIF_AVATAR", c.GIFAvatar)
	c.UsernameChange = envPrice("COSMETICS_PRICE_USERNAME_CHANGE", c.UsernameChange)
	if v, err := strconv.Atoi(env.GetEnv("COSMETICS_FREE_GRADIENT_COLORS", "")); err == nil && v > 0 {
		c.FreeGradientColors = v
	}
	return c
}

func envPrice(key string, def int64) int64 {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// RequiredSlots returns how many purchasable slots a gradient of colorCount
// colors needs beyond the free allowance.
func (c Catalog) RequiredSlots(colorCount int) int {
	if colorCount <= c.FreeGradientColors {
		return 0
	}
	return colorCount - c.FreeGradientColors
}

// GradientPrice computes the total price of applying a gradient with
// colorCount colors for an account that already owns ownedSlots extra slots.
// Owned slots are never consumed; only the missing ones are billed.
func (c Catalog) GradientPrice(colorCount, ownedSlots int) int64 {
	required := c.RequiredSlots(colorCount)
	missing := required - ownedSlots
	if missing < 0 {
		missing = 0
	}
	return c.GradientBase + c.GradientSlot*int64(missing)
}

package usercontext

import "github.com/gofiber/fiber/v2"

// SubjectType discriminates the two kinds of principal the platform knows:
// accounts authenticated by a third-party provider and locally issued
// anonymous accounts.
type SubjectType string

const (
	SubjectThirdParty SubjectType = "third_party"
	SubjectAnonymous  SubjectType = "anonymous"
)

// Valid reports whether t is one of the known subject types.
func (t SubjectType) Valid() bool {
	return t == SubjectThirdParty || t == SubjectAnonymous
}

// Subject identifies the account performing or receiving a token operation.
// It is resolved once per request by the user context middleware and passed
// down instead of re-deriving the principal kind in every handler.
type Subject struct {
	ID   string      `json:"subject_id"`
	Type SubjectType `json:"subject_type"`
}

// IsZero reports whether no subject was resolved.
func (s Subject) IsZero() bool {
	return s.ID == "" || s.Type == ""
}

// UserContext represents the complete user context for a request
type UserContext struct {
	Subject    Subject `json:"subject"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	IsLoggedIn bool    `json:"is_logged_in"`
	IsAdmin    bool    `json:"is_admin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// SetUserContext stores the resolved context for downstream handlers.
func SetUserContext(c *fiber.Ctx, ctx UserContext) {
	c.Locals("USER_CONTEXT", ctx)
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetSubject returns the resolved subject, or a zero subject if not logged in
func GetSubject(c *fiber.Ctx) Subject {
	return GetUserContext(c).Subject
}

// GetUsername returns the current user's username, or empty string if not logged in
func GetUsername(c *fiber.Ctx) string {
	return GetUserContext(c).Username
}

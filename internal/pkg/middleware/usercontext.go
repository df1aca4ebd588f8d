package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/confessly/confessly/internal/pkg/env"
	"github.com/confessly/confessly/internal/pkg/session"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the request principal once and stores it for
// every downstream handler. Both principal kinds (third-party and anonymous)
// end up in the same Subject shape.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	if _, err := session.GetSessionStore().Get(c); err != nil {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false, IsAdmin: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	subjectID := session.GetSessionValue(c, usercontext.KeySubjectID)
	subjectType := usercontext.SubjectType(session.GetSessionValue(c, usercontext.KeySubjectType))
	if subjectID == "" || !subjectType.Valid() {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false, IsAdmin: false})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	email := session.GetSessionValue(c, usercontext.KeyEmail)
	isAdmin := session.GetSessionValue(c, usercontext.KeyIsAdmin) == "true"

	userCtx := usercontext.UserContext{
		Subject:    usercontext.Subject{ID: subjectID, Type: subjectType},
		Username:   username,
		Email:      email,
		IsLoggedIn: true,
		IsAdmin:    isAdmin || IsPrivilegedEmail(email),
	}
	usercontext.SetUserContext(c, userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}

// IsPrivilegedEmail checks the resolved identity against the fixed allow-list
// of admin email addresses (ADMIN_EMAILS, comma separated).
func IsPrivilegedEmail(email string) bool {
	if email == "" {
		return false
	}
	allow := env.GetEnv("ADMIN_EMAILS", "")
	if allow == "" {
		return false
	}
	for _, entry := range strings.Split(allow, ",") {
		if strings.EqualFold(strings.TrimSpace(entry), email) {
			return true
		}
	}
	return false
}

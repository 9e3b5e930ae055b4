// Package middleware contains the HTTP middleware for the ClubHub API:
// bearer token authentication, the platform-admin check, and the per-club
// role gate.
package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/auth"
	"github.com/moimlab/clubhub/internal/config"
	"github.com/moimlab/clubhub/internal/models"
)

// Locals keys populated by the middleware in this package.
const (
	LocalUserID   = "userID"   // uint — the authenticated user's id
	LocalEmail    = "email"    // string — the authenticated user's email
	LocalClubRole = "clubRole" // models.ClubRole — set by RequireClubRole
)

// RequireAuth validates the "Authorization: Bearer <token>" header on every
// protected request. A missing header and an invalid/expired token are
// reported with distinct messages so clients can tell "log in" apart from
// "log in again". On success the user id and email from the token are stored
// in the request context for downstream handlers.
func RequireAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization token required",
			})
		}

		claims, err := auth.VerifyToken(cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		// The subject is the stringified user id issued at login.
		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(LocalUserID, uint(userID))
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// RequireAdmin allows only platform administrators. The is_admin flag is
// re-read from the users table on every request rather than trusted from the
// token payload, so revoking admin takes effect immediately.
// Must run after RequireAuth.
func RequireAdmin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(LocalUserID).(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization token required",
			})
		}

		var user models.User
		if err := db.Select("is_admin").First(&user, userID).Error; err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("admin flag lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}

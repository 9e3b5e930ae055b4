// roles.go — the per-club role gate.
//
// Every club-scoped mutating route is wrapped by RequireClubRole with an
// explicit allow-set, so each route's authorization is a single line and the
// precedence (no membership before wrong role) is identical everywhere.
package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/models"
)

// RequireClubRole allows only callers whose membership role in the club
// named by the :clubId path parameter is in the given allow-set.
//
//	api.Post("/clubs/:clubId/leagues",
//	    middleware.RequireClubRole(db, models.RoleOwner, models.RoleAdmin),
//	    handlers.CreateLeague(db))
//
// Outcomes, in order:
//   - caller has no membership row in the club -> 403 "not a member"
//   - caller's role is not in the allow-set    -> 403 naming the roles
//     that would have been sufficient
//   - otherwise the resolved role is stored in c.Locals(LocalClubRole)
//     and the request continues
//
// Must run after RequireAuth.
func RequireClubRole(db *gorm.DB, roles ...models.ClubRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(LocalUserID).(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization token required",
			})
		}

		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "club not found",
			})
		}

		var membership models.Membership
		err = db.Where("club_id = ? AND user_id = ?", clubID, userID).First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "not a member of this club",
				})
			}
			logrus.WithError(err).WithFields(logrus.Fields{
				"club_id": clubID, "user_id": userID,
			}).Error("membership lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		if !roleAllowed(membership.Role, roles) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": forbiddenMessage(roles),
			})
		}

		c.Locals(LocalClubRole, membership.Role)
		return c.Next()
	}
}

// roleAllowed reports whether role is in the allow-set.
func roleAllowed(role models.ClubRole, allowed []models.ClubRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// forbiddenMessage enumerates the roles that would have been sufficient,
// e.g. "forbidden: requires one of owner, admin".
func forbiddenMessage(allowed []models.ClubRole) string {
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return fmt.Sprintf("forbidden: requires one of %s", strings.Join(names, ", "))
}

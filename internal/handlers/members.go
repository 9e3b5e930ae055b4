// members.go — membership routes under /api/v1/clubs/:clubId/members.
//
// Owner is immutable through everything here: the role-change route refuses
// to touch a row currently holding owner and refuses to grant owner, and
// member removal refuses an owner target. Only whole-club deletion removes
// an owner.
package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/models"
)

// MemberResponse is one row of a club's member list.
type MemberResponse struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	MemberCode  string `json:"member_code"`
	Role        string `json:"role"`
	Division    string `json:"division"`
	JoinedAt    string `json:"joined_at"`
}

// ListMembers handles GET /api/v1/clubs/:clubId/members (role gate: any
// member). Paginated with the standard envelope.
func ListMembers(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		page, limit := pageParams(c)

		var total int64
		if err := db.Model(&models.Membership{}).
			Where("club_id = ?", clubID).
			Count(&total).Error; err != nil {
			return serverError(c, err, "member count failed")
		}

		var memberships []models.Membership
		if err := db.Preload("User").
			Where("club_id = ?", clubID).
			Order("joined_at ASC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&memberships).Error; err != nil {
			return serverError(c, err, "member list failed")
		}

		items := make([]MemberResponse, 0, len(memberships))
		for _, m := range memberships {
			items = append(items, MemberResponse{
				UserID:      m.UserID,
				DisplayName: m.User.DisplayName,
				MemberCode:  m.User.MemberCode,
				Role:        string(m.Role),
				Division:    m.Division,
				JoinedAt:    m.JoinedAt.UTC().Format(time.RFC3339),
			})
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// UpdateMemberRole handles PATCH /api/v1/clubs/:clubId/members/:userId/role
// (role gate: owner only). The new role must be exactly "member" or "admin"
// — never "owner", never anything else — and the target row must not
// currently hold owner.
func UpdateMemberRole(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		targetID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
		if err != nil {
			return notFound(c, "member not found")
		}

		var req struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		newRole := models.ClubRole(req.Role)
		if newRole != models.RoleMember && newRole != models.RoleAdmin {
			return badRequest(c, "role must be 'member' or 'admin'")
		}

		var target models.Membership
		err = db.Where("club_id = ? AND user_id = ?", clubID, uint(targetID)).First(&target).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "member not found")
			}
			return serverError(c, err, "member lookup failed")
		}

		if target.Role == models.RoleOwner {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "the owner's role cannot be changed",
			})
		}

		if err := db.Model(&target).Update("role", newRole).Error; err != nil {
			return serverError(c, err, "role update failed")
		}
		return c.JSON(fiber.Map{"message": "role updated"})
	}
}

// RemoveMember handles DELETE /api/v1/clubs/:clubId/members/:userId (role
// gate: owner, admin). The owner can never be removed through this route.
func RemoveMember(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		targetID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
		if err != nil {
			return notFound(c, "member not found")
		}

		var target models.Membership
		err = db.Where("club_id = ? AND user_id = ?", clubID, uint(targetID)).First(&target).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "member not found")
			}
			return serverError(c, err, "member lookup failed")
		}

		if target.Role == models.RoleOwner {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "the club owner cannot be removed",
			})
		}

		if err := db.Delete(&target).Error; err != nil {
			return serverError(c, err, "member removal failed")
		}
		return c.JSON(fiber.Map{"message": "member removed"})
	}
}

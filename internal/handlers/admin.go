// admin.go — the /api/v1/admin back-office routes. Every route here sits
// behind RequireAuth + RequireAdmin; the admin flag is re-read from the
// store per request, never trusted from the token.
package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/auth"
	"github.com/moimlab/clubhub/internal/models"
)

// ListUsers handles GET /api/v1/admin/users with an optional "q" search
// over email and display name, paginated.
func ListUsers(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit := pageParams(c)

		query := db.Model(&models.User{})
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			pattern := "%" + q + "%"
			query = query.Where("email ILIKE ? OR display_name ILIKE ?", pattern, pattern)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return serverError(c, err, "user count failed")
		}

		var users []models.User
		err := query.Order("created_at DESC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&users).Error
		if err != nil {
			return serverError(c, err, "user list failed")
		}

		items := make([]UserResponse, 0, len(users))
		for i := range users {
			items = append(items, toUserResponse(&users[i]))
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// CreateUser handles POST /api/v1/admin/users — back-office creation of a
// local account, with a member code assigned like any registration.
func CreateUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			return badRequest(c, "a valid email is required")
		}
		if len(req.Password) < 8 {
			return badRequest(c, "password must be at least 8 characters")
		}
		if strings.TrimSpace(req.Name) == "" {
			return badRequest(c, "name is required")
		}

		user, err := auth.RegisterLocal(db, req.Email, req.Password, strings.TrimSpace(req.Name))
		if err != nil {
			if errors.Is(err, auth.ErrDuplicateEmail) {
				return conflict(c, "email is already registered")
			}
			return serverError(c, err, "user creation failed")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": toUserResponse(user)})
	}
}

// UpdateUserAdmin handles PATCH /api/v1/admin/users/:userId — currently the
// only mutable back-office field is the is_admin flag.
func UpdateUserAdmin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
		if err != nil {
			return notFound(c, "user not found")
		}

		var req struct {
			IsAdmin *bool `json:"is_admin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.IsAdmin == nil {
			return badRequest(c, "nothing to update")
		}

		res := db.Model(&models.User{}).Where("id = ?", uint(targetID)).
			Update("is_admin", *req.IsAdmin)
		if res.Error != nil {
			return serverError(c, res.Error, "user update failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "user not found")
		}
		return c.JSON(fiber.Map{"message": "user updated"})
	}
}

// DeleteUser handles DELETE /api/v1/admin/users/:userId. The user's
// memberships are removed with the user row in one transaction. A user who
// still owns a club cannot be deleted — owner removal only happens through
// whole-club deletion.
func DeleteUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := strconv.ParseUint(c.Params("userId"), 10, 64)
		if err != nil {
			return notFound(c, "user not found")
		}

		var owned int64
		if err := db.Model(&models.Membership{}).
			Where("user_id = ? AND role = ?", uint(targetID), models.RoleOwner).
			Count(&owned).Error; err != nil {
			return serverError(c, err, "ownership check failed")
		}
		if owned > 0 {
			return conflict(c, "user still owns a club; delete or transfer the club first")
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", uint(targetID)).Delete(&models.Membership{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", uint(targetID)).Delete(&models.User{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return notFound(c, "user not found")
			}
			return serverError(c, txErr, "user deletion failed")
		}
		return c.JSON(fiber.Map{"message": "user deleted"})
	}
}

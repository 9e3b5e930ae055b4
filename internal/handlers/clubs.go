// clubs.go — the /api/v1/clubs routes.
//
// Permission model: any authenticated user can create, browse, and join
// clubs. Everything that mutates an existing club goes through the club role
// gate (middleware.RequireClubRole) with an explicit allow-set; the handlers
// in this file assume the gate has already run where the route requires it.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/middleware"
	"github.com/moimlab/clubhub/internal/models"
)

// ClubResponse is the public shape of a club.
type ClubResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Sport       string  `json:"sport"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	FoundedOn   *string `json:"founded_on"`
	CreatorName string  `json:"creator_name"`
	MemberCount int64   `json:"member_count"`
	CreatedAt   string  `json:"created_at"`
}

type CreateClubRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Sport       string  `json:"sport"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	FoundedOn   *string `json:"founded_on"` // "YYYY-MM-DD"
}

type UpdateClubRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Sport       *string `json:"sport"`
	City        *string `json:"city"`
	District    *string `json:"district"`
	FoundedOn   *string `json:"founded_on"`
}

// ClubFilter is the fixed set of list predicates. Each predicate is applied
// as a separate parameterized condition — a filter value is never spliced
// into the statement text.
type ClubFilter struct {
	Sport    string // exact sport tag
	City     string // exact city
	District string // exact district
	Name     string // case-insensitive substring of the club name
}

// Apply composes the active predicates onto the query.
func (f ClubFilter) Apply(q *gorm.DB) *gorm.DB {
	if f.Sport != "" {
		q = q.Where("sport = ?", f.Sport)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.District != "" {
		q = q.Where("district = ?", f.District)
	}
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+f.Name+"%")
	}
	return q
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toClubResponse(club *models.Club, memberCount int64) ClubResponse {
	return ClubResponse{
		ID:          club.ID.String(),
		Name:        club.Name,
		Description: club.Description,
		Sport:       club.Sport,
		City:        club.City,
		District:    club.District,
		FoundedOn:   formatOptionalDate(club.FoundedOn),
		CreatorName: club.Creator.DisplayName,
		MemberCount: memberCount,
		CreatedAt:   club.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateClub handles POST /api/v1/clubs. The club row and the creator's
// owner membership are written in one transaction — a club with zero members
// cannot come out of this handler, whole or failed.
func CreateClub(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)

		var req CreateClubRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return badRequest(c, "name is required")
		}

		foundedOn, err := parseOptionalDate(req.FoundedOn)
		if err != nil {
			return badRequest(c, "founded_on must be in YYYY-MM-DD format")
		}

		// Club names are unique platform-wide.
		var count int64
		if err := db.Model(&models.Club{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
			return serverError(c, err, "club name check failed")
		}
		if count > 0 {
			return conflict(c, "a club with this name already exists")
		}

		var club models.Club
		txErr := db.Transaction(func(tx *gorm.DB) error {
			club = models.Club{
				Name:        req.Name,
				Description: req.Description,
				Sport:       req.Sport,
				City:        req.City,
				District:    req.District,
				FoundedOn:   foundedOn,
				CreatedBy:   userID,
			}
			if err := tx.Create(&club).Error; err != nil {
				return err
			}

			owner := models.Membership{
				ClubID: club.ID,
				UserID: userID,
				Role:   models.RoleOwner,
			}
			return tx.Create(&owner).Error
		})
		if txErr != nil {
			return serverError(c, txErr, "club creation failed")
		}

		var creator models.User
		if err := db.First(&creator, userID).Error; err != nil {
			return serverError(c, err, "creator lookup failed")
		}
		club.Creator = creator

		return c.Status(fiber.StatusCreated).JSON(toClubResponse(&club, 1))
	}
}

// ListClubs handles GET /api/v1/clubs with optional sport/city/district/name
// filters and the standard pagination envelope.
func ListClubs(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit := pageParams(c)
		filter := ClubFilter{
			Sport:    c.Query("sport"),
			City:     c.Query("city"),
			District: c.Query("district"),
			Name:     c.Query("name"),
		}

		var total int64
		if err := filter.Apply(db.Model(&models.Club{})).Count(&total).Error; err != nil {
			return serverError(c, err, "club count failed")
		}

		var clubs []models.Club
		err := filter.Apply(db.Preload("Creator")).
			Order("created_at DESC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&clubs).Error
		if err != nil {
			return serverError(c, err, "club list failed")
		}

		items := make([]ClubResponse, 0, len(clubs))
		for i := range clubs {
			var memberCount int64
			if err := db.Model(&models.Membership{}).
				Where("club_id = ?", clubs[i].ID).
				Count(&memberCount).Error; err != nil {
				return serverError(c, err, "member count failed")
			}
			items = append(items, toClubResponse(&clubs[i], memberCount))
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// GetClub handles GET /api/v1/clubs/:clubId.
func GetClub(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		var club models.Club
		if err := db.Preload("Creator").First(&club, "id = ?", clubID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "club not found")
			}
			return serverError(c, err, "club lookup failed")
		}

		var memberCount int64
		if err := db.Model(&models.Membership{}).
			Where("club_id = ?", clubID).
			Count(&memberCount).Error; err != nil {
			return serverError(c, err, "member count failed")
		}

		return c.JSON(toClubResponse(&club, memberCount))
	}
}

// UpdateClub handles PATCH /api/v1/clubs/:clubId (role gate: owner, admin).
func UpdateClub(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		var req UpdateClubRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			if *req.Name == "" {
				return badRequest(c, "name cannot be empty")
			}
			var count int64
			if err := db.Model(&models.Club{}).
				Where("name = ? AND id != ?", *req.Name, clubID).
				Count(&count).Error; err != nil {
				return serverError(c, err, "club name check failed")
			}
			if count > 0 {
				return conflict(c, "a club with this name already exists")
			}
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Sport != nil {
			updates["sport"] = *req.Sport
		}
		if req.City != nil {
			updates["city"] = *req.City
		}
		if req.District != nil {
			updates["district"] = *req.District
		}
		if req.FoundedOn != nil {
			foundedOn, err := parseOptionalDate(req.FoundedOn)
			if err != nil {
				return badRequest(c, "founded_on must be in YYYY-MM-DD format")
			}
			updates["founded_on"] = foundedOn
		}
		if len(updates) == 0 {
			return badRequest(c, "nothing to update")
		}

		res := db.Model(&models.Club{}).Where("id = ?", clubID).Updates(updates)
		if res.Error != nil {
			return serverError(c, res.Error, "club update failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "club not found")
		}
		return c.JSON(fiber.Map{"message": "club updated"})
	}
}

// DeleteClub handles DELETE /api/v1/clubs/:clubId (role gate: owner only).
// Membership rows are removed and then the club row, all in one transaction;
// leagues, participants, and draws below the club cascade in the store.
// This is the only path that removes an owner role.
func DeleteClub(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("club_id = ?", clubID).Delete(&models.Membership{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", clubID).Delete(&models.Club{})
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
				return notFound(c, "club not found")
			}
			return serverError(c, txErr, "club deletion failed")
		}
		return c.JSON(fiber.Map{"message": "club deleted"})
	}
}

// JoinClub handles POST /api/v1/clubs/:clubId/join. Any authenticated user
// may join an existing club as a regular member.
func JoinClub(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)

		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		var club models.Club
		if err := db.First(&club, "id = ?", clubID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "club not found")
			}
			return serverError(c, err, "club lookup failed")
		}

		var existing int64
		if err := db.Model(&models.Membership{}).
			Where("club_id = ? AND user_id = ?", clubID, userID).
			Count(&existing).Error; err != nil {
			return serverError(c, err, "membership check failed")
		}
		if existing > 0 {
			return conflict(c, "already a member of this club")
		}

		membership := models.Membership{
			ClubID: clubID,
			UserID: userID,
			Role:   models.RoleMember,
		}
		if err := db.Create(&membership).Error; err != nil {
			return serverError(c, err, "join failed")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "joined club"})
	}
}

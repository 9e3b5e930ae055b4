// leagues.go — league routes under /api/v1/clubs/:clubId/leagues.
//
// Leagues are always addressed together with their club, so every handler
// re-validates the league/club linkage; a league id that exists under a
// different club is indistinguishable from one that does not exist.
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

// LeagueResponse is the public shape of a league.
type LeagueResponse struct {
	ID               string  `json:"id"`
	ClubID           string  `json:"club_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	LeagueType       string  `json:"league_type"`
	Format           string  `json:"format"`
	Sport            string  `json:"sport"`
	StartsAt         *string `json:"starts_at"`
	Notice           string  `json:"notice"`
	SortOrder        int     `json:"sort_order"`
	Status           string  `json:"status"`
	RecruitTarget    int     `json:"recruit_target"`
	ParticipantCount int     `json:"participant_count"`
	CreatedAt        string  `json:"created_at"`
}

// ParticipantInput is one entrant submitted at league creation or through
// the participant routes. Unset booleans default to false, unset division
// to the empty string.
type ParticipantInput struct {
	Name     string `json:"name"`
	Division string `json:"division"`
	Paid     bool   `json:"paid"`
	Arrived  bool   `json:"arrived"`
	Attended bool   `json:"attended"`
}

type CreateLeagueRequest struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	LeagueType    string             `json:"league_type"`
	Format        string             `json:"format"`
	Sport         string             `json:"sport"`
	StartsAt      *string            `json:"starts_at"` // RFC 3339
	Notice        string             `json:"notice"`
	SortOrder     int                `json:"sort_order"`
	RecruitTarget int                `json:"recruit_target"`
	Participants  []ParticipantInput `json:"participants"`
}

type UpdateLeagueRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	LeagueType    *string `json:"league_type"`
	Format        *string `json:"format"`
	Sport         *string `json:"sport"`
	StartsAt      *string `json:"starts_at"`
	Notice        *string `json:"notice"`
	SortOrder     *int    `json:"sort_order"`
	Status        *string `json:"status"`
	RecruitTarget *int    `json:"recruit_target"`
}

func toLeagueResponse(l *models.League) LeagueResponse {
	var startsAt *string
	if l.StartsAt != nil {
		s := l.StartsAt.UTC().Format(time.RFC3339)
		startsAt = &s
	}
	return LeagueResponse{
		ID:               l.ID.String(),
		ClubID:           l.ClubID.String(),
		Name:             l.Name,
		Description:      l.Description,
		LeagueType:       l.LeagueType,
		Format:           l.Format,
		Sport:            l.Sport,
		StartsAt:         startsAt,
		Notice:           l.Notice,
		SortOrder:        l.SortOrder,
		Status:           string(l.Status),
		RecruitTarget:    l.RecruitTarget,
		ParticipantCount: l.ParticipantCount,
		CreatedAt:        l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// findLeagueInClub fetches a league by id, requiring that it belongs to the
// club from the request path. Used by every league/participant/draw handler
// to re-validate the parent linkage before any mutation.
func findLeagueInClub(db *gorm.DB, clubID uuid.UUID, leagueIDParam string) (*models.League, error) {
	leagueID, err := uuid.Parse(leagueIDParam)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var league models.League
	if err := db.Where("id = ? AND club_id = ?", leagueID, clubID).First(&league).Error; err != nil {
		return nil, err
	}
	return &league, nil
}

// recountParticipants recomputes a league's stored participant counter from
// the participants table. Always called inside the same transaction as the
// insert or delete that changed the roster, so the counter cannot drift.
func recountParticipants(tx *gorm.DB, leagueID uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Participant{}).Where("league_id = ?", leagueID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.League{}).Where("id = ?", leagueID).
		Update("participant_count", count).Error
}

// CreateLeague handles POST /api/v1/clubs/:clubId/leagues (role gate:
// owner, admin). The league row and any initial participant rows are
// written in one transaction, and the participant counter is set from the
// submitted array — a client-sent count is not part of the request.
func CreateLeague(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		var req CreateLeagueRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return badRequest(c, "name is required")
		}
		for _, p := range req.Participants {
			if p.Name == "" {
				return badRequest(c, "participant name is required")
			}
		}

		startsAt, err := parseOptionalTime(req.StartsAt)
		if err != nil {
			return badRequest(c, "starts_at must be an RFC 3339 timestamp")
		}

		var league models.League
		txErr := db.Transaction(func(tx *gorm.DB) error {
			league = models.League{
				ClubID:           clubID,
				Name:             req.Name,
				Description:      req.Description,
				LeagueType:       req.LeagueType,
				Format:           req.Format,
				Sport:            req.Sport,
				StartsAt:         startsAt,
				Notice:           req.Notice,
				SortOrder:        req.SortOrder,
				Status:           models.LeagueStatusDraft,
				RecruitTarget:    req.RecruitTarget,
				ParticipantCount: len(req.Participants),
				CreatedBy:        userID,
			}
			if err := tx.Create(&league).Error; err != nil {
				return err
			}

			for _, p := range req.Participants {
				participant := models.Participant{
					LeagueID: league.ID,
					Division: p.Division,
					Name:     p.Name,
					Paid:     p.Paid,
					Arrived:  p.Arrived,
					Attended: p.Attended,
				}
				if err := tx.Create(&participant).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if txErr != nil {
			return serverError(c, txErr, "league creation failed")
		}

		return c.Status(fiber.StatusCreated).JSON(toLeagueResponse(&league))
	}
}

// ListLeagues handles GET /api/v1/clubs/:clubId/leagues (role gate: any
// member).
func ListLeagues(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		page, limit := pageParams(c)

		var total int64
		if err := db.Model(&models.League{}).Where("club_id = ?", clubID).Count(&total).Error; err != nil {
			return serverError(c, err, "league count failed")
		}

		var leagues []models.League
		err = db.Where("club_id = ?", clubID).
			Order("sort_order ASC, created_at DESC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&leagues).Error
		if err != nil {
			return serverError(c, err, "league list failed")
		}

		items := make([]LeagueResponse, 0, len(leagues))
		for i := range leagues {
			items = append(items, toLeagueResponse(&leagues[i]))
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// GetLeague handles GET /api/v1/clubs/:clubId/leagues/:leagueId (role gate:
// any member).
func GetLeague(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		league, err := findLeagueInClub(db, clubID, c.Params("leagueId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "league not found")
			}
			return serverError(c, err, "league lookup failed")
		}
		return c.JSON(toLeagueResponse(league))
	}
}

// UpdateLeague handles PATCH /api/v1/clubs/:clubId/leagues/:leagueId (role
// gate: owner, admin). Partial patch; an empty patch is rejected.
func UpdateLeague(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		leagueID, err := uuid.Parse(c.Params("leagueId"))
		if err != nil {
			return notFound(c, "league not found")
		}

		var req UpdateLeagueRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			if *req.Name == "" {
				return badRequest(c, "name cannot be empty")
			}
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.LeagueType != nil {
			updates["league_type"] = *req.LeagueType
		}
		if req.Format != nil {
			updates["format"] = *req.Format
		}
		if req.Sport != nil {
			updates["sport"] = *req.Sport
		}
		if req.StartsAt != nil {
			startsAt, err := parseOptionalTime(req.StartsAt)
			if err != nil {
				return badRequest(c, "starts_at must be an RFC 3339 timestamp")
			}
			updates["starts_at"] = startsAt
		}
		if req.Notice != nil {
			updates["notice"] = *req.Notice
		}
		if req.SortOrder != nil {
			updates["sort_order"] = *req.SortOrder
		}
		if req.Status != nil {
			switch models.LeagueStatus(*req.Status) {
			case models.LeagueStatusDraft, models.LeagueStatusActive, models.LeagueStatusCompleted:
				updates["status"] = *req.Status
			default:
				return badRequest(c, "status must be 'draft', 'active', or 'completed'")
			}
		}
		if req.RecruitTarget != nil {
			updates["recruit_target"] = *req.RecruitTarget
		}
		if len(updates) == 0 {
			return badRequest(c, "nothing to update")
		}

		res := db.Model(&models.League{}).
			Where("id = ? AND club_id = ?", leagueID, clubID).
			Updates(updates)
		if res.Error != nil {
			return serverError(c, res.Error, "league update failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "league not found")
		}
		return c.JSON(fiber.Map{"message": "league updated"})
	}
}

// DeleteLeague handles DELETE /api/v1/clubs/:clubId/leagues/:leagueId (role
// gate: owner, admin). Participants and draws cascade in the store.
func DeleteLeague(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}

		league, err := findLeagueInClub(db, clubID, c.Params("leagueId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "league not found")
			}
			return serverError(c, err, "league lookup failed")
		}

		if err := db.Delete(league).Error; err != nil {
			return serverError(c, err, "league deletion failed")
		}
		return c.JSON(fiber.Map{"message": "league deleted"})
	}
}

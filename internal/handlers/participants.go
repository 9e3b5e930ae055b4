// participants.go — participant routes under
// /api/v1/clubs/:clubId/leagues/:leagueId/participants.
//
// Reading and patching the roster is open to any club member (scorekeepers
// are regular members); adding and deleting entrants needs owner or admin.
// The league's stored participant counter is recomputed inside the same
// transaction as every insert and delete.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/models"
)

// ParticipantResponse is the public shape of one entrant.
type ParticipantResponse struct {
	ID        string `json:"id"`
	LeagueID  string `json:"league_id"`
	Division  string `json:"division"`
	Name      string `json:"name"`
	Paid      bool   `json:"paid"`
	Arrived   bool   `json:"arrived"`
	Attended  bool   `json:"attended"`
	CreatedAt string `json:"created_at"`
}

type UpdateParticipantRequest struct {
	Division *string `json:"division"`
	Name     *string `json:"name"`
	Paid     *bool   `json:"paid"`
	Arrived  *bool   `json:"arrived"`
	Attended *bool   `json:"attended"`
}

func toParticipantResponse(p *models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:        p.ID.String(),
		LeagueID:  p.LeagueID.String(),
		Division:  p.Division,
		Name:      p.Name,
		Paid:      p.Paid,
		Arrived:   p.Arrived,
		Attended:  p.Attended,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// AddParticipant handles POST .../participants (role gate: owner, admin).
func AddParticipant(db *gorm.DB) fiber.Handler {
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

		var req ParticipantInput
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return badRequest(c, "name is required")
		}

		var participant models.Participant
		txErr := db.Transaction(func(tx *gorm.DB) error {
			participant = models.Participant{
				LeagueID: league.ID,
				Division: req.Division,
				Name:     req.Name,
				Paid:     req.Paid,
				Arrived:  req.Arrived,
				Attended: req.Attended,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
			return recountParticipants(tx, league.ID)
		})
		if txErr != nil {
			return serverError(c, txErr, "participant creation failed")
		}

		return c.Status(fiber.StatusCreated).JSON(toParticipantResponse(&participant))
	}
}

// ListParticipants handles GET .../participants (role gate: any member).
// Paginated like every other listing; draw screens page through the roster.
func ListParticipants(db *gorm.DB) fiber.Handler {
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
		page, limit := pageParams(c)

		var total int64
		if err := db.Model(&models.Participant{}).
			Where("league_id = ?", league.ID).
			Count(&total).Error; err != nil {
			return serverError(c, err, "participant count failed")
		}

		var participants []models.Participant
		if err := db.Where("league_id = ?", league.ID).
			Order("created_at ASC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&participants).Error; err != nil {
			return serverError(c, err, "participant list failed")
		}

		items := make([]ParticipantResponse, 0, len(participants))
		for i := range participants {
			items = append(items, toParticipantResponse(&participants[i]))
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// UpdateParticipant handles PATCH .../participants/:participantId (role
// gate: any member). Any field subset may be patched; an empty patch is
// rejected with "nothing to update".
func UpdateParticipant(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		participantID, err := uuid.Parse(c.Params("participantId"))
		if err != nil {
			return notFound(c, "participant not found")
		}

		league, err := findLeagueInClub(db, clubID, c.Params("leagueId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "league not found")
			}
			return serverError(c, err, "league lookup failed")
		}

		var req UpdateParticipantRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		updates := map[string]interface{}{}
		if req.Division != nil {
			updates["division"] = *req.Division
		}
		if req.Name != nil {
			if *req.Name == "" {
				return badRequest(c, "name cannot be empty")
			}
			updates["name"] = *req.Name
		}
		if req.Paid != nil {
			updates["paid"] = *req.Paid
		}
		if req.Arrived != nil {
			updates["arrived"] = *req.Arrived
		}
		if req.Attended != nil {
			updates["attended"] = *req.Attended
		}
		if len(updates) == 0 {
			return badRequest(c, "nothing to update")
		}

		// Both ids must match — a participant id under some other league 404s.
		res := db.Model(&models.Participant{}).
			Where("id = ? AND league_id = ?", participantID, league.ID).
			Updates(updates)
		if res.Error != nil {
			return serverError(c, res.Error, "participant update failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "participant not found")
		}
		return c.JSON(fiber.Map{"message": "participant updated"})
	}
}

// DeleteParticipant handles DELETE .../participants/:participantId (role
// gate: owner, admin).
func DeleteParticipant(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		participantID, err := uuid.Parse(c.Params("participantId"))
		if err != nil {
			return notFound(c, "participant not found")
		}

		league, err := findLeagueInClub(db, clubID, c.Params("leagueId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "league not found")
			}
			return serverError(c, err, "league lookup failed")
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("id = ? AND league_id = ?", participantID, league.ID).
				Delete(&models.Participant{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return recountParticipants(tx, league.ID)
		})
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return notFound(c, "participant not found")
			}
			return serverError(c, txErr, "participant deletion failed")
		}
		return c.JSON(fiber.Map{"message": "participant deleted"})
	}
}

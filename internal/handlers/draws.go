// draws.go — prize draw routes under
// /api/v1/clubs/:clubId/leagues/:leagueId/draws.
//
// A draw owns ordered prizes, and each prize owns ordered winners. Winner
// names are free text — the client picks them from the roster, but nothing
// ties a winner row to a participant row. "Running" a draw is a full
// replace: every existing prize and winner of the draw is deleted and the
// submitted payload re-inserted, all in one transaction, with submission
// order persisted as the sort order.
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

// WinnerInput is one submitted winner: a participant name plus an optional
// division tag.
type WinnerInput struct {
	Name     string `json:"name"`
	Division string `json:"division"`
}

// PrizeInput is one submitted prize with its pre-selected winners.
type PrizeInput struct {
	Name     string        `json:"name"`
	Quantity int           `json:"quantity"`
	Winners  []WinnerInput `json:"winners"`
}

type CreateDrawRequest struct {
	Name   string       `json:"name"`
	Prizes []PrizeInput `json:"prizes"`
}

type RunDrawRequest struct {
	Prizes []PrizeInput `json:"prizes"`
}

type UpdateDrawRequest struct {
	Name     *string `json:"name"`
	LeagueID *string `json:"league_id"` // move the draw to another league in the same club
}

// WinnerResponse and PrizeResponse mirror the stored ordering.
type WinnerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

type PrizeResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Quantity int              `json:"quantity"`
	Winners  []WinnerResponse `json:"winners"`
}

type DrawResponse struct {
	ID        string          `json:"id"`
	LeagueID  string          `json:"league_id"`
	Name      string          `json:"name"`
	Prizes    []PrizeResponse `json:"prizes"`
	CreatedAt string          `json:"created_at"`
}

// validatePrizes checks the submitted prize list: at least one prize, every
// prize named, every quantity at least 1.
func validatePrizes(prizes []PrizeInput) string {
	if len(prizes) == 0 {
		return "at least one prize is required"
	}
	for _, p := range prizes {
		if p.Name == "" {
			return "prize name is required"
		}
		if p.Quantity < 1 {
			return "prize quantity must be at least 1"
		}
	}
	return ""
}

// insertPrizes writes the prize rows and their winners for a draw, tagging
// each row's position in the payload as its sort order.
func insertPrizes(tx *gorm.DB, drawID uuid.UUID, prizes []PrizeInput) error {
	for i, p := range prizes {
		prize := models.Prize{
			DrawID:    drawID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			SortOrder: i,
		}
		if err := tx.Create(&prize).Error; err != nil {
			return err
		}
		for j, w := range p.Winners {
			winner := models.Winner{
				PrizeID:   prize.ID,
				Name:      w.Name,
				Division:  w.Division,
				SortOrder: j,
			}
			if err := tx.Create(&winner).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// findDrawInLeague fetches a draw by id, requiring that it belongs to the
// given league.
func findDrawInLeague(db *gorm.DB, leagueID uuid.UUID, drawIDParam string) (*models.Draw, error) {
	drawID, err := uuid.Parse(drawIDParam)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var draw models.Draw
	if err := db.Where("id = ? AND league_id = ?", drawID, leagueID).First(&draw).Error; err != nil {
		return nil, err
	}
	return &draw, nil
}

// loadDrawResponse assembles a draw with its prizes and winners nested,
// ordered by stored sort order. A prize with zero winners carries an empty
// array, never null.
func loadDrawResponse(db *gorm.DB, draw *models.Draw) (DrawResponse, error) {
	var prizes []models.Prize
	err := db.Preload("Winners", func(q *gorm.DB) *gorm.DB {
		return q.Order("sort_order ASC")
	}).Where("draw_id = ?", draw.ID).Order("sort_order ASC").Find(&prizes).Error
	if err != nil {
		return DrawResponse{}, err
	}

	prizeItems := make([]PrizeResponse, 0, len(prizes))
	for _, p := range prizes {
		winners := make([]WinnerResponse, 0, len(p.Winners))
		for _, w := range p.Winners {
			winners = append(winners, WinnerResponse{
				ID:       w.ID.String(),
				Name:     w.Name,
				Division: w.Division,
			})
		}
		prizeItems = append(prizeItems, PrizeResponse{
			ID:       p.ID.String(),
			Name:     p.Name,
			Quantity: p.Quantity,
			Winners:  winners,
		})
	}

	return DrawResponse{
		ID:        draw.ID.String(),
		LeagueID:  draw.LeagueID.String(),
		Name:      draw.Name,
		Prizes:    prizeItems,
		CreatedAt: draw.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// CreateDraw handles POST .../draws (role gate: owner, admin). Draw, prizes,
// and winners are written in one transaction; any failure rolls back the
// whole set.
func CreateDraw(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)
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

		var req CreateDrawRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return badRequest(c, "name is required")
		}
		if msg := validatePrizes(req.Prizes); msg != "" {
			return badRequest(c, msg)
		}

		var draw models.Draw
		txErr := db.Transaction(func(tx *gorm.DB) error {
			draw = models.Draw{
				LeagueID:  league.ID,
				Name:      req.Name,
				CreatedBy: userID,
			}
			if err := tx.Create(&draw).Error; err != nil {
				return err
			}
			return insertPrizes(tx, draw.ID, req.Prizes)
		})
		if txErr != nil {
			return serverError(c, txErr, "draw creation failed")
		}

		resp, err := loadDrawResponse(db, &draw)
		if err != nil {
			return serverError(c, err, "draw load failed")
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// ListDraws handles GET .../draws (role gate: any member).
func ListDraws(db *gorm.DB) fiber.Handler {
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

		var draws []models.Draw
		if err := db.Where("league_id = ?", league.ID).
			Order("created_at DESC").
			Find(&draws).Error; err != nil {
			return serverError(c, err, "draw list failed")
		}

		items := make([]DrawResponse, 0, len(draws))
		for i := range draws {
			resp, err := loadDrawResponse(db, &draws[i])
			if err != nil {
				return serverError(c, err, "draw load failed")
			}
			items = append(items, resp)
		}
		return c.JSON(fiber.Map{"draws": items})
	}
}

// GetDraw handles GET .../draws/:drawId (role gate: any member).
func GetDraw(db *gorm.DB) fiber.Handler {
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

		draw, err := findDrawInLeague(db, league.ID, c.Params("drawId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "draw not found")
			}
			return serverError(c, err, "draw lookup failed")
		}

		resp, err := loadDrawResponse(db, draw)
		if err != nil {
			return serverError(c, err, "draw load failed")
		}
		return c.JSON(resp)
	}
}

// RunDraw handles PUT .../draws/:drawId/run (role gate: owner, admin).
// Full-replace semantics: existing winners are deleted, then existing
// prizes, then the submitted payload is inserted — one transaction. A rerun
// that omits a previous prize removes that prize and its winners; nothing is
// merged.
func RunDraw(db *gorm.DB) fiber.Handler {
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

		draw, err := findDrawInLeague(db, league.ID, c.Params("drawId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "draw not found")
			}
			return serverError(c, err, "draw lookup failed")
		}

		var req RunDrawRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if msg := validatePrizes(req.Prizes); msg != "" {
			return badRequest(c, msg)
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("prize_id IN (?)",
				tx.Model(&models.Prize{}).Select("id").Where("draw_id = ?", draw.ID),
			).Delete(&models.Winner{}).Error; err != nil {
				return err
			}
			if err := tx.Where("draw_id = ?", draw.ID).Delete(&models.Prize{}).Error; err != nil {
				return err
			}
			return insertPrizes(tx, draw.ID, req.Prizes)
		})
		if txErr != nil {
			return serverError(c, txErr, "draw run failed")
		}

		resp, err := loadDrawResponse(db, draw)
		if err != nil {
			return serverError(c, err, "draw load failed")
		}
		return c.JSON(resp)
	}
}

// SavePrizeWinners handles PUT .../draws/:drawId/prizes/:prizeId/winners
// (role gate: owner, admin). The narrower variant of a run: only the named
// prize's winners are replaced. The prize must belong to the stated draw,
// and the draw to the stated league, before anything is mutated.
func SavePrizeWinners(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clubID, err := uuid.Parse(c.Params("clubId"))
		if err != nil {
			return notFound(c, "club not found")
		}
		prizeID, err := uuid.Parse(c.Params("prizeId"))
		if err != nil {
			return notFound(c, "prize not found")
		}

		league, err := findLeagueInClub(db, clubID, c.Params("leagueId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "league not found")
			}
			return serverError(c, err, "league lookup failed")
		}

		draw, err := findDrawInLeague(db, league.ID, c.Params("drawId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "draw not found")
			}
			return serverError(c, err, "draw lookup failed")
		}

		var prize models.Prize
		err = db.Where("id = ? AND draw_id = ?", prizeID, draw.ID).First(&prize).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "prize not found")
			}
			return serverError(c, err, "prize lookup failed")
		}

		var req struct {
			Winners []WinnerInput `json:"winners"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("prize_id = ?", prize.ID).Delete(&models.Winner{}).Error; err != nil {
				return err
			}
			for j, w := range req.Winners {
				winner := models.Winner{
					PrizeID:   prize.ID,
					Name:      w.Name,
					Division:  w.Division,
					SortOrder: j,
				}
				if err := tx.Create(&winner).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if txErr != nil {
			return serverError(c, txErr, "winner save failed")
		}

		resp, err := loadDrawResponse(db, draw)
		if err != nil {
			return serverError(c, err, "draw load failed")
		}
		return c.JSON(resp)
	}
}

// UpdateDraw handles PATCH .../draws/:drawId (role gate: owner, admin).
// Supports renaming and moving the draw to another league. A move target is
// resolved as "a league with the target id whose club is the current
// league's club" — a league in any other club 404s.
func UpdateDraw(db *gorm.DB) fiber.Handler {
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

		draw, err := findDrawInLeague(db, league.ID, c.Params("drawId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "draw not found")
			}
			return serverError(c, err, "draw lookup failed")
		}

		var req UpdateDrawRequest
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
		if req.LeagueID != nil {
			target, err := findLeagueInClub(db, league.ClubID, *req.LeagueID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound(c, "target league not found")
				}
				return serverError(c, err, "target league lookup failed")
			}
			updates["league_id"] = target.ID
		}
		if len(updates) == 0 {
			return badRequest(c, "nothing to update")
		}

		if err := db.Model(draw).Updates(updates).Error; err != nil {
			return serverError(c, err, "draw update failed")
		}
		return c.JSON(fiber.Map{"message": "draw updated"})
	}
}

// DeleteDraw handles DELETE .../draws/:drawId (role gate: owner, admin).
// Prizes and winners cascade in the store.
func DeleteDraw(db *gorm.DB) fiber.Handler {
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

		draw, err := findDrawInLeague(db, league.ID, c.Params("drawId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "draw not found")
			}
			return serverError(c, err, "draw lookup failed")
		}

		if err := db.Delete(draw).Error; err != nil {
			return serverError(c, err, "draw deletion failed")
		}
		return c.JSON(fiber.Map{"message": "draw deleted"})
	}
}

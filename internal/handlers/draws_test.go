package handlers

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimlab/clubhub/internal/models"
	"github.com/moimlab/clubhub/internal/testdb"
)

func TestValidatePrizes(t *testing.T) {
	assert.Equal(t, "at least one prize is required", validatePrizes(nil))
	assert.Equal(t, "at least one prize is required", validatePrizes([]PrizeInput{}))

	assert.Equal(t, "prize name is required", validatePrizes([]PrizeInput{
		{Name: "", Quantity: 1},
	}))

	assert.Equal(t, "prize quantity must be at least 1", validatePrizes([]PrizeInput{
		{Name: "Shuttlecock set", Quantity: 0},
	}))

	assert.Empty(t, validatePrizes([]PrizeInput{
		{Name: "Racket", Quantity: 1},
		{Name: "Grip tape", Quantity: 3, Winners: []WinnerInput{{Name: "김민수"}}},
	}))
}

func TestRunDrawReplacesPrizesAndWinners(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Raffle Hosts")
	league := seedLeague(t, db, club, "Closing Day")

	app := fiber.New()
	app.Post("/clubs/:clubId/leagues/:leagueId/draws", as(owner.ID), CreateDraw(db))
	app.Put("/clubs/:clubId/leagues/:leagueId/draws/:drawId/run", RunDraw(db))
	base := "/clubs/" + club.ID.String() + "/leagues/" + league.ID.String() + "/draws"

	resp := doJSON(t, app, "POST", base, CreateDrawRequest{
		Name: "Closing raffle",
		Prizes: []PrizeInput{
			{Name: "Racket", Quantity: 1, Winners: []WinnerInput{{Name: "Kim"}}},
			{Name: "Shuttlecocks", Quantity: 3},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created DrawResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Len(t, created.Prizes, 2)

	// A rerun replaces everything; nothing from the first run is merged in.
	resp = doJSON(t, app, "PUT", base+"/"+created.ID+"/run", RunDrawRequest{
		Prizes: []PrizeInput{
			{Name: "Grip tape", Quantity: 2, Winners: []WinnerInput{{Name: "Lee"}, {Name: "Park"}}},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rerun DrawResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rerun))
	require.Len(t, rerun.Prizes, 1)
	assert.Equal(t, "Grip tape", rerun.Prizes[0].Name)
	require.Len(t, rerun.Prizes[0].Winners, 2)
	assert.Equal(t, "Lee", rerun.Prizes[0].Winners[0].Name)
	assert.Equal(t, "Park", rerun.Prizes[0].Winners[1].Name)

	var prizes, winners int64
	require.NoError(t, db.Model(&models.Prize{}).Count(&prizes).Error)
	require.NoError(t, db.Model(&models.Winner{}).Count(&winners).Error)
	assert.EqualValues(t, 1, prizes)
	assert.EqualValues(t, 2, winners)

	var gone int64
	require.NoError(t, db.Model(&models.Prize{}).
		Where("id = ?", created.Prizes[0].ID).
		Count(&gone).Error)
	assert.Zero(t, gone)
}

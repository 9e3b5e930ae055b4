package handlers

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimlab/clubhub/internal/models"
	"github.com/moimlab/clubhub/internal/testdb"
)

func TestListParticipantsPaginates(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Spring Open Hosts")
	league := seedLeague(t, db, club, "Spring Open")
	for i := 1; i <= 3; i++ {
		seedParticipant(t, db, league, fmt.Sprintf("Entrant %d", i))
	}

	app := fiber.New()
	app.Get("/clubs/:clubId/leagues/:leagueId/participants", ListParticipants(db))
	base := "/clubs/" + club.ID.String() + "/leagues/" + league.ID.String() + "/participants"

	resp := doJSON(t, app, "GET", base+"?limit=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, float64(3), body["total"])

	// An oversized limit is capped, never honored.
	resp = doJSON(t, app, "GET", base+"?limit=1000", nil)
	body = decodeMap(t, resp)
	assert.Equal(t, float64(100), body["limit"])
	assert.Len(t, body["items"], 3)
}

func TestParticipantCountTracksRoster(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Autumn Cup Hosts")
	league := seedLeague(t, db, club, "Autumn Cup")

	app := fiber.New()
	app.Post("/clubs/:clubId/leagues/:leagueId/participants", as(owner.ID), AddParticipant(db))
	app.Delete("/clubs/:clubId/leagues/:leagueId/participants/:participantId", DeleteParticipant(db))
	base := "/clubs/" + club.ID.String() + "/leagues/" + league.ID.String() + "/participants"

	resp := doJSON(t, app, "POST", base, ParticipantInput{Name: "Kim"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var first ParticipantResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))

	resp = doJSON(t, app, "POST", base, ParticipantInput{Name: "Lee", Division: "A조"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var stored models.League
	require.NoError(t, db.First(&stored, "id = ?", league.ID).Error)
	assert.Equal(t, 2, stored.ParticipantCount)

	resp = doJSON(t, app, "DELETE", base+"/"+first.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&stored, "id = ?", league.ID).Error)
	assert.Equal(t, 1, stored.ParticipantCount)
}

package handlers

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimlab/clubhub/internal/models"
	"github.com/moimlab/clubhub/internal/testdb"
)

func TestParseOptionalDate(t *testing.T) {
	got, err := parseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = parseOptionalDate(&empty)
	require.NoError(t, err)
	assert.Nil(t, got)

	valid := "2023-04-01"
	got, err = parseOptionalDate(&valid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), got.UTC())

	bad := "04/01/2023"
	_, err = parseOptionalDate(&bad)
	assert.Error(t, err)
}

func TestFormatOptionalDate(t *testing.T) {
	assert.Nil(t, formatOptionalDate(nil))

	d := time.Date(2023, 4, 1, 15, 30, 0, 0, time.UTC)
	got := formatOptionalDate(&d)
	require.NotNil(t, got)
	assert.Equal(t, "2023-04-01", *got)
}

func TestCreateClubCreatesOwnerMembership(t *testing.T) {
	db := testdb.New(t)
	user := seedUser(t, db, "Minsu")

	app := fiber.New()
	app.Post("/clubs", as(user.ID), CreateClub(db))

	resp := doJSON(t, app, "POST", "/clubs", CreateClubRequest{Name: "Smash Badminton"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Minsu", decodeMap(t, resp)["creator_name"])

	var club models.Club
	require.NoError(t, db.First(&club, "name = ?", "Smash Badminton").Error)

	var membership models.Membership
	require.NoError(t, db.First(&membership, "club_id = ? AND user_id = ?", club.ID, user.ID).Error)
	assert.Equal(t, models.RoleOwner, membership.Role)

	// A duplicate name conflicts and leaves no partial rows behind.
	resp = doJSON(t, app, "POST", "/clubs", CreateClubRequest{Name: "Smash Badminton"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var clubs, memberships int64
	require.NoError(t, db.Model(&models.Club{}).Count(&clubs).Error)
	require.NoError(t, db.Model(&models.Membership{}).Count(&memberships).Error)
	assert.EqualValues(t, 1, clubs)
	assert.EqualValues(t, 1, memberships)
}

func TestGetClubReportsMemberCount(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Dawn Tennis")
	joiner := seedUser(t, db, "Joiner")
	seedMember(t, db, club, joiner, models.RoleMember)

	app := fiber.New()
	app.Get("/clubs/:clubId", GetClub(db))

	resp := doJSON(t, app, "GET", "/clubs/"+club.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, float64(2), body["member_count"])
	assert.Equal(t, "Owner", body["creator_name"])
}

func TestDeleteClubRemovesWholeSubtree(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Night Runners")
	member := seedUser(t, db, "Member")
	seedMember(t, db, club, member, models.RoleMember)

	league := seedLeague(t, db, club, "Spring Open")
	seedParticipant(t, db, league, "Entrant A")
	draw := models.Draw{LeagueID: league.ID, Name: "Raffle", CreatedBy: owner.ID}
	require.NoError(t, db.Create(&draw).Error)
	prize := models.Prize{DrawID: draw.ID, Name: "Racket", Quantity: 1}
	require.NoError(t, db.Create(&prize).Error)
	require.NoError(t, db.Create(&models.Winner{PrizeID: prize.ID, Name: "Entrant A"}).Error)

	app := fiber.New()
	app.Delete("/clubs/:clubId", as(owner.ID), DeleteClub(db))

	resp := doJSON(t, app, "DELETE", "/clubs/"+club.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, m := range []interface{}{
		&models.Club{}, &models.Membership{}, &models.League{},
		&models.Participant{}, &models.Draw{}, &models.Prize{}, &models.Winner{},
	} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n)
	}

	// The people survive their club.
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users)
}

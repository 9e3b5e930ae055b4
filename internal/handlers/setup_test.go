package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/middleware"
	"github.com/moimlab/clubhub/internal/models"
)

var seedSeq int64

// as injects an authenticated identity into locals, standing in for
// RequireAuth in handler tests.
func as(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, userID)
		return c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	n := atomic.AddInt64(&seedSeq, 1)
	user := models.User{
		Email:       fmt.Sprintf("user%d@example.com", n),
		DisplayName: name,
		Provider:    models.ProviderLocal,
		MemberCode:  fmt.Sprintf("M2026%08d", n),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedClub creates a club and the owner's membership, the same shape the
// create handler produces.
func seedClub(t *testing.T, db *gorm.DB, owner *models.User, name string) *models.Club {
	t.Helper()
	club := models.Club{Name: name, CreatedBy: owner.ID}
	require.NoError(t, db.Create(&club).Error)
	require.NoError(t, db.Create(&models.Membership{
		ClubID: club.ID,
		UserID: owner.ID,
		Role:   models.RoleOwner,
	}).Error)
	return &club
}

func seedMember(t *testing.T, db *gorm.DB, club *models.Club, user *models.User, role models.ClubRole) {
	t.Helper()
	require.NoError(t, db.Create(&models.Membership{
		ClubID: club.ID,
		UserID: user.ID,
		Role:   role,
	}).Error)
}

func seedLeague(t *testing.T, db *gorm.DB, club *models.Club, name string) *models.League {
	t.Helper()
	league := models.League{
		ClubID:    club.ID,
		Name:      name,
		Status:    models.LeagueStatusDraft,
		CreatedBy: club.CreatedBy,
	}
	require.NoError(t, db.Create(&league).Error)
	return &league
}

func seedParticipant(t *testing.T, db *gorm.DB, league *models.League, name string) *models.Participant {
	t.Helper()
	p := models.Participant{LeagueID: league.ID, Name: name}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

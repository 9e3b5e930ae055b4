package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/models"
	"github.com/moimlab/clubhub/internal/testdb"
)

func TestRoleAllowed(t *testing.T) {
	staff := []models.ClubRole{models.RoleOwner, models.RoleAdmin}

	assert.True(t, roleAllowed(models.RoleOwner, staff))
	assert.True(t, roleAllowed(models.RoleAdmin, staff))
	assert.False(t, roleAllowed(models.RoleMember, staff))

	ownerOnly := []models.ClubRole{models.RoleOwner}
	assert.False(t, roleAllowed(models.RoleAdmin, ownerOnly))
	assert.False(t, roleAllowed(models.RoleMember, nil))
}

func TestForbiddenMessageEnumeratesRoles(t *testing.T) {
	msg := forbiddenMessage([]models.ClubRole{models.RoleOwner, models.RoleAdmin})
	assert.Equal(t, "forbidden: requires one of owner, admin", msg)

	msg = forbiddenMessage([]models.ClubRole{models.RoleOwner})
	assert.Equal(t, "forbidden: requires one of owner", msg)
}

// gateApp wires the gate behind a stub identity, the way RequireAuth would
// populate locals. userID 0 means no identity at all.
func gateApp(db *gorm.DB, userID uint, roles ...models.ClubRole) *fiber.App {
	app := fiber.New()
	app.Post("/clubs/:clubId/leagues", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals(LocalUserID, userID)
		}
		return c.Next()
	}, RequireClubRole(db, roles...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": c.Locals(LocalClubRole)})
	})
	return app
}

func gatePost(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRequireClubRolePrecedence(t *testing.T) {
	db := testdb.New(t)

	owner := models.User{Email: "owner@example.com", DisplayName: "Owner", MemberCode: "M202601010001"}
	require.NoError(t, db.Create(&owner).Error)
	member := models.User{Email: "member@example.com", DisplayName: "Member", MemberCode: "M202601010002"}
	require.NoError(t, db.Create(&member).Error)
	outsider := models.User{Email: "outsider@example.com", DisplayName: "Outsider", MemberCode: "M202601010003"}
	require.NoError(t, db.Create(&outsider).Error)

	club := models.Club{Name: "Gate Club", CreatedBy: owner.ID}
	require.NoError(t, db.Create(&club).Error)
	require.NoError(t, db.Create(&models.Membership{ClubID: club.ID, UserID: owner.ID, Role: models.RoleOwner}).Error)
	require.NoError(t, db.Create(&models.Membership{ClubID: club.ID, UserID: member.ID, Role: models.RoleMember}).Error)

	staff := []models.ClubRole{models.RoleOwner, models.RoleAdmin}
	path := "/clubs/" + club.ID.String() + "/leagues"

	// No membership row wins over the wrong-role message.
	status, body := gatePost(t, gateApp(db, outsider.ID, staff...), path)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "not a member of this club", body["error"])

	// A member outside the allow-set is told which roles would suffice.
	status, body = gatePost(t, gateApp(db, member.ID, staff...), path)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "forbidden: requires one of owner, admin", body["error"])

	// An allowed role continues with the resolved role in locals.
	status, body = gatePost(t, gateApp(db, owner.ID, staff...), path)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "owner", body["role"])

	// An unparseable club id reads as absence.
	status, body = gatePost(t, gateApp(db, owner.ID, staff...), "/clubs/not-a-uuid/leagues")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "club not found", body["error"])

	// No identity at all never reaches the membership lookup.
	status, body = gatePost(t, gateApp(db, 0, staff...), path)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "authorization token required", body["error"])
}

package handlers

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimlab/clubhub/internal/models"
	"github.com/moimlab/clubhub/internal/testdb"
)

func memberPath(club *models.Club, userID uint) string {
	return "/clubs/" + club.ID.String() + "/members/" + strconv.FormatUint(uint64(userID), 10)
}

func TestListMembersPaginates(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Morning Badminton")
	for i := 1; i <= 2; i++ {
		u := seedUser(t, db, fmt.Sprintf("Member %d", i))
		seedMember(t, db, club, u, models.RoleMember)
	}

	app := fiber.New()
	app.Get("/clubs/:clubId/members", ListMembers(db))
	base := "/clubs/" + club.ID.String() + "/members"

	resp := doJSON(t, app, "GET", base+"?limit=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["limit"])

	resp = doJSON(t, app, "GET", base+"?page=2&limit=2", nil)
	body = decodeMap(t, resp)
	assert.Len(t, body["items"], 1)

	// An oversized limit is capped, never honored.
	resp = doJSON(t, app, "GET", base+"?limit=1000", nil)
	body = decodeMap(t, resp)
	assert.Equal(t, float64(100), body["limit"])
	assert.Len(t, body["items"], 3)
}

func TestUpdateMemberRoleProtectsOwner(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Dawn Tennis")
	member := seedUser(t, db, "Member")
	seedMember(t, db, club, member, models.RoleMember)

	app := fiber.New()
	app.Patch("/clubs/:clubId/members/:userId/role", UpdateMemberRole(db))

	// The owner's row cannot be touched.
	resp := doJSON(t, app, "PATCH", memberPath(club, owner.ID)+"/role", fiber.Map{"role": "admin"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "the owner's role cannot be changed", decodeMap(t, resp)["error"])

	var stored models.Membership
	require.NoError(t, db.First(&stored, "club_id = ? AND user_id = ?", club.ID, owner.ID).Error)
	assert.Equal(t, models.RoleOwner, stored.Role)

	// Owner cannot be granted either.
	resp = doJSON(t, app, "PATCH", memberPath(club, member.ID)+"/role", fiber.Map{"role": "owner"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "role must be 'member' or 'admin'", decodeMap(t, resp)["error"])

	// Promoting a member to admin works.
	resp = doJSON(t, app, "PATCH", memberPath(club, member.ID)+"/role", fiber.Map{"role": "admin"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated models.Membership
	require.NoError(t, db.First(&updated, "club_id = ? AND user_id = ?", club.ID, member.ID).Error)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestRemoveMemberProtectsOwner(t *testing.T) {
	db := testdb.New(t)
	owner := seedUser(t, db, "Owner")
	club := seedClub(t, db, owner, "Night Runners")
	member := seedUser(t, db, "Member")
	seedMember(t, db, club, member, models.RoleMember)

	app := fiber.New()
	app.Delete("/clubs/:clubId/members/:userId", RemoveMember(db))

	resp := doJSON(t, app, "DELETE", memberPath(club, owner.ID), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "the club owner cannot be removed", decodeMap(t, resp)["error"])

	var ownerRows int64
	require.NoError(t, db.Model(&models.Membership{}).
		Where("club_id = ? AND user_id = ?", club.ID, owner.ID).
		Count(&ownerRows).Error)
	assert.EqualValues(t, 1, ownerRows)

	resp = doJSON(t, app, "DELETE", memberPath(club, member.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var memberRows int64
	require.NoError(t, db.Model(&models.Membership{}).
		Where("club_id = ? AND user_id = ?", club.ID, member.ID).
		Count(&memberRows).Error)
	assert.Zero(t, memberRows)
}

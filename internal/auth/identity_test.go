package auth

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimlab/clubhub/internal/models"
	"github.com/moimlab/clubhub/internal/testdb"
)

func TestFormatMemberCode(t *testing.T) {
	assert.Equal(t, "M202601150001", formatMemberCode("20260115", 1))
	assert.Equal(t, "M202601150042", formatMemberCode("20260115", 42))
	assert.Equal(t, "M202612319999", formatMemberCode("20261231", 9999))
}

func TestFormatMemberCodeSequenceIsContiguous(t *testing.T) {
	// Codes generated on the same day differ only in the 4-digit suffix.
	prev := formatMemberCode("20260301", 1)
	for seq := 2; seq <= 25; seq++ {
		code := formatMemberCode("20260301", seq)
		assert.Equal(t, prev[:9], code[:9])
		assert.Greater(t, code, prev)
		prev = code
	}
}

func TestRegisterLocalAssignsSequentialMemberCodes(t *testing.T) {
	db := testdb.New(t)

	first, err := RegisterLocal(db, "first@example.com", "password123", "First")
	require.NoError(t, err)
	second, err := RegisterLocal(db, "second@example.com", "password123", "Second")
	require.NoError(t, err)

	require.Len(t, first.MemberCode, 13)
	assert.Equal(t, first.MemberCode[:9], second.MemberCode[:9])

	n1, err := strconv.Atoi(first.MemberCode[9:])
	require.NoError(t, err)
	n2, err := strconv.Atoi(second.MemberCode[9:])
	require.NoError(t, err)
	assert.Equal(t, n1+1, n2)

	_, err = RegisterLocal(db, "first@example.com", "another-pass", "Dup")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthenticateLocal(t *testing.T) {
	db := testdb.New(t)
	_, err := RegisterLocal(db, "kim@example.com", "password123", "Kim")
	require.NoError(t, err)

	user, err := AuthenticateLocal(db, "kim@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Kim", user.DisplayName)

	_, err = AuthenticateLocal(db, "kim@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = AuthenticateLocal(db, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveOAuthLinksLocalAccount(t *testing.T) {
	db := testdb.New(t)
	local, err := RegisterLocal(db, "kim@example.com", "password123", "Kim")
	require.NoError(t, err)

	linked, err := ResolveOAuth(db, OAuthProfile{
		Provider: models.ProviderGoogle, ID: "g-123", Email: "Kim@Example.com", Name: "Kim",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, linked.ID)
	assert.Equal(t, models.ProviderGoogle, linked.Provider)

	// Local login keeps working after linking.
	_, err = AuthenticateLocal(db, "kim@example.com", "password123")
	require.NoError(t, err)

	// A different provider on the same email is a conflict, not a merge.
	_, err = ResolveOAuth(db, OAuthProfile{
		Provider: models.ProviderKakao, ID: "k-9", Email: "kim@example.com", Name: "Kim",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var stored models.User
	require.NoError(t, db.First(&stored, local.ID).Error)
	assert.Equal(t, models.ProviderGoogle, stored.Provider)
	require.NotNil(t, stored.PasswordHash)
}

func TestResolveOAuthIsIdempotent(t *testing.T) {
	db := testdb.New(t)
	profile := OAuthProfile{
		Provider: models.ProviderNaver, ID: "n-1", Email: "park@example.com", Name: "Park",
	}

	first, err := ResolveOAuth(db, profile)
	require.NoError(t, err)
	assert.NotEmpty(t, first.MemberCode)

	second, err := ResolveOAuth(db, profile)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

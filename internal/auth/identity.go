package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/models"
)

var (
	// ErrDuplicateEmail means the email is already registered under an
	// incompatible provider (or, for local registration, at all).
	ErrDuplicateEmail = errors.New("email is already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// RegisterLocal creates a local-provider user. The email must be unused
// across every provider type.
func RegisterLocal(db *gorm.DB, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user models.User
	txErr := db.Transaction(func(tx *gorm.DB) error {
		code, err := NextMemberCode(tx, time.Now())
		if err != nil {
			return err
		}
		user = models.User{
			Email:        email,
			PasswordHash: &hash,
			DisplayName:  name,
			Provider:     models.ProviderLocal,
			MemberCode:   code,
		}
		return tx.Create(&user).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &user, nil
}

// AuthenticateLocal verifies a local credential pair. A pure social account
// (no stored password hash) can never log in locally, even with a correct
// guess of some former password.
func AuthenticateLocal(db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil || !CheckPassword(*user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ResolveOAuth maps a provider profile to exactly one user, creating or
// linking as needed. Rules, keyed on an email lookup:
//
//   - no user            -> create a new social account
//   - local user         -> link: switch provider, store the external id,
//     keep the row id and the password hash (local login stays usable)
//   - same provider, missing external id -> backfill the external id
//   - any other provider -> ErrDuplicateEmail; nothing is mutated
//
// Resolving the same profile twice returns the same user id both times.
func ResolveOAuth(db *gorm.DB, profile OAuthProfile) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		// First login with this email: create a social account.
		txErr := db.Transaction(func(tx *gorm.DB) error {
			code, err := NextMemberCode(tx, time.Now())
			if err != nil {
				return err
			}
			providerID := profile.ID
			user = models.User{
				Email:       email,
				DisplayName: profile.Name,
				Provider:    profile.Provider,
				ProviderID:  &providerID,
				MemberCode:  code,
			}
			return tx.Create(&user).Error
		})
		if txErr != nil {
			return nil, txErr
		}
		return &user, nil
	}

	switch {
	case user.Provider == models.ProviderLocal:
		// Account upgrade from local to social. The password hash is kept.
		providerID := profile.ID
		updates := map[string]interface{}{
			"provider":    profile.Provider,
			"provider_id": providerID,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		user.Provider = profile.Provider
		user.ProviderID = &providerID
		return &user, nil

	case user.Provider == profile.Provider:
		if user.ProviderID == nil || *user.ProviderID == "" {
			providerID := profile.ID
			if err := db.Model(&user).Update("provider_id", providerID).Error; err != nil {
				return nil, err
			}
			user.ProviderID = &providerID
		}
		return &user, nil

	default:
		// Registered under a different social provider — do not merge.
		return nil, ErrDuplicateEmail
	}
}

// NextMemberCode reserves the next member code for the given wall-clock
// date: "M" + YYYYMMDD + a 4-digit, zero-padded, per-day sequence starting
// at 0001. The per-day counter is bumped with a single upsert-returning
// statement, so concurrent callers always receive distinct codes.
func NextMemberCode(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")

	var seq int
	err := tx.Raw(`
		INSERT INTO member_code_counters (day, seq) VALUES (?, 1)
		ON CONFLICT (day) DO UPDATE SET seq = member_code_counters.seq + 1
		RETURNING seq`, day,
	).Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return formatMemberCode(day, seq), nil
}

func formatMemberCode(day string, seq int) string {
	return fmt.Sprintf("M%s%04d", day, seq)
}

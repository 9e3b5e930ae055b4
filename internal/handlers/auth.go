// auth.go — the /api/v1/auth routes: local register/login, social login
// callbacks, and the current-user endpoint.
package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/auth"
	"github.com/moimlab/clubhub/internal/config"
	"github.com/moimlab/clubhub/internal/middleware"
	"github.com/moimlab/clubhub/internal/models"
)

// UserResponse is the public shape of a user record. The password hash and
// external provider id never leave the server.
type UserResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
	MemberCode  string `json:"member_code"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Provider:    string(u.Provider),
		MemberCode:  u.MemberCode,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// issueSession signs a bearer token for the user and builds the login
// response body shared by every auth route.
func issueSession(cfg *config.Config, user *models.User) (fiber.Map, error) {
	token, err := auth.GenerateToken(cfg.JWTSecret, strconv.FormatUint(uint64(user.ID), 10), user.Email, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"token": token, "user": toUserResponse(user)}, nil
}

// Register handles POST /api/v1/auth/register — local account creation.
func Register(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Name = strings.TrimSpace(req.Name)
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			return badRequest(c, "a valid email is required")
		}
		if len(req.Password) < 8 {
			return badRequest(c, "password must be at least 8 characters")
		}
		if req.Name == "" {
			return badRequest(c, "name is required")
		}

		user, err := auth.RegisterLocal(db, req.Email, req.Password, req.Name)
		if err != nil {
			if errors.Is(err, auth.ErrDuplicateEmail) {
				return conflict(c, "email is already registered")
			}
			return serverError(c, err, "local registration failed")
		}

		body, err := issueSession(cfg, user)
		if err != nil {
			return serverError(c, err, "token signing failed")
		}
		return c.Status(fiber.StatusCreated).JSON(body)
	}
}

// Login handles POST /api/v1/auth/login — local credential login.
func Login(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return badRequest(c, "email and password are required")
		}

		user, err := auth.AuthenticateLocal(db, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid email or password",
				})
			}
			return serverError(c, err, "local login failed")
		}

		body, err := issueSession(cfg, user)
		if err != nil {
			return serverError(c, err, "token signing failed")
		}
		return c.JSON(body)
	}
}

// OAuthCallback handles POST /api/v1/auth/:provider/callback. The frontend
// completes the provider redirect and posts the authorization code here; the
// server exchanges it, resolves the profile to a single user record, and
// issues a session token.
func OAuthCallback(db *gorm.DB, cfg *config.Config, clients map[string]*auth.OAuthClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, ok := clients[c.Params("provider")]
		if !ok {
			return notFound(c, "unknown login provider")
		}

		var req struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&req); err != nil || req.Code == "" {
			return badRequest(c, "authorization code is required")
		}

		profile, err := client.Exchange(c.Context(), req.Code)
		if err != nil {
			logrus.WithError(err).WithField("provider", c.Params("provider")).Warn("oauth exchange failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "social login failed",
			})
		}

		user, err := auth.ResolveOAuth(db, profile)
		if err != nil {
			if errors.Is(err, auth.ErrDuplicateEmail) {
				return conflict(c, "email is already registered with a different provider")
			}
			return serverError(c, err, "oauth identity resolution failed")
		}

		body, err := issueSession(cfg, user)
		if err != nil {
			return serverError(c, err, "token signing failed")
		}
		return c.JSON(body)
	}
}

// Me handles GET /api/v1/auth/me — the authenticated user's own record.
func Me(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "user not found")
			}
			return serverError(c, err, "user lookup failed")
		}
		return c.JSON(fiber.Map{"user": toUserResponse(&user)})
	}
}

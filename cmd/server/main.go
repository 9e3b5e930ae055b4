// cmd/server/main.go
// Entry point for the ClubHub API server: load config, connect to Postgres,
// run migrations, and register the route tree.
package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/moimlab/clubhub/internal/auth"
	"github.com/moimlab/clubhub/internal/config"
	"github.com/moimlab/clubhub/internal/database"
	"github.com/moimlab/clubhub/internal/handlers"
	"github.com/moimlab/clubhub/internal/middleware"
	"github.com/moimlab/clubhub/internal/models"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	oauthClients := auth.NewOAuthClients(cfg)

	app := fiber.New(fiber.Config{
		AppName: "ClubHub API",
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api/v1")

	// Public board content and auth entry points.
	api.Get("/notices", handlers.ListNotices(db))
	api.Get("/notices/:noticeId", handlers.GetNotice(db))
	api.Get("/faqs", handlers.ListFAQs(db))
	api.Get("/policies/:slug", handlers.GetPolicy(db))

	authGroup := api.Group("/auth")
	authGroup.Post("/register", handlers.Register(db, cfg))
	authGroup.Post("/login", handlers.Login(db, cfg))
	authGroup.Post("/:provider/callback", handlers.OAuthCallback(db, cfg, oauthClients))
	authGroup.Get("/me", middleware.RequireAuth(cfg), handlers.Me(db))

	// Everything below requires a valid bearer token.
	protected := api.Group("", middleware.RequireAuth(cfg))

	// Role gates, named for readability at the route registrations.
	anyMember := middleware.RequireClubRole(db, models.RoleOwner, models.RoleAdmin, models.RoleMember)
	staff := middleware.RequireClubRole(db, models.RoleOwner, models.RoleAdmin)
	ownerOnly := middleware.RequireClubRole(db, models.RoleOwner)

	// Clubs.
	protected.Get("/clubs", handlers.ListClubs(db))
	protected.Post("/clubs", handlers.CreateClub(db))
	protected.Get("/clubs/:clubId", handlers.GetClub(db))
	protected.Patch("/clubs/:clubId", staff, handlers.UpdateClub(db))
	protected.Delete("/clubs/:clubId", ownerOnly, handlers.DeleteClub(db))
	protected.Post("/clubs/:clubId/join", handlers.JoinClub(db))

	// Members.
	protected.Get("/clubs/:clubId/members", anyMember, handlers.ListMembers(db))
	protected.Patch("/clubs/:clubId/members/:userId/role", ownerOnly, handlers.UpdateMemberRole(db))
	protected.Delete("/clubs/:clubId/members/:userId", staff, handlers.RemoveMember(db))

	// Leagues.
	protected.Post("/clubs/:clubId/leagues", staff, handlers.CreateLeague(db))
	protected.Get("/clubs/:clubId/leagues", anyMember, handlers.ListLeagues(db))
	protected.Get("/clubs/:clubId/leagues/:leagueId", anyMember, handlers.GetLeague(db))
	protected.Patch("/clubs/:clubId/leagues/:leagueId", staff, handlers.UpdateLeague(db))
	protected.Delete("/clubs/:clubId/leagues/:leagueId", staff, handlers.DeleteLeague(db))

	// Participants.
	protected.Post("/clubs/:clubId/leagues/:leagueId/participants", staff, handlers.AddParticipant(db))
	protected.Get("/clubs/:clubId/leagues/:leagueId/participants", anyMember, handlers.ListParticipants(db))
	protected.Patch("/clubs/:clubId/leagues/:leagueId/participants/:participantId", anyMember, handlers.UpdateParticipant(db))
	protected.Delete("/clubs/:clubId/leagues/:leagueId/participants/:participantId", staff, handlers.DeleteParticipant(db))

	// Draws.
	protected.Post("/clubs/:clubId/leagues/:leagueId/draws", staff, handlers.CreateDraw(db))
	protected.Get("/clubs/:clubId/leagues/:leagueId/draws", anyMember, handlers.ListDraws(db))
	protected.Get("/clubs/:clubId/leagues/:leagueId/draws/:drawId", anyMember, handlers.GetDraw(db))
	protected.Put("/clubs/:clubId/leagues/:leagueId/draws/:drawId/run", staff, handlers.RunDraw(db))
	protected.Put("/clubs/:clubId/leagues/:leagueId/draws/:drawId/prizes/:prizeId/winners", staff, handlers.SavePrizeWinners(db))
	protected.Patch("/clubs/:clubId/leagues/:leagueId/draws/:drawId", staff, handlers.UpdateDraw(db))
	protected.Delete("/clubs/:clubId/leagues/:leagueId/draws/:drawId", staff, handlers.DeleteDraw(db))

	// Admin back-office.
	admin := protected.Group("/admin", middleware.RequireAdmin(db))
	admin.Get("/users", handlers.ListUsers(db))
	admin.Post("/users", handlers.CreateUser(db))
	admin.Patch("/users/:userId", handlers.UpdateUserAdmin(db))
	admin.Delete("/users/:userId", handlers.DeleteUser(db))
	admin.Post("/notices", handlers.CreateNotice(db))
	admin.Patch("/notices/:noticeId", handlers.UpdateNotice(db))
	admin.Delete("/notices/:noticeId", handlers.DeleteNotice(db))
	admin.Post("/faqs", handlers.CreateFAQ(db))
	admin.Patch("/faqs/:faqId", handlers.UpdateFAQ(db))
	admin.Delete("/faqs/:faqId", handlers.DeleteFAQ(db))
	admin.Post("/policies/:slug/versions", handlers.PublishPolicyVersion(db))

	logrus.WithField("port", cfg.Port).Info("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

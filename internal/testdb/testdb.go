// Package testdb opens an in-memory SQLite database carrying the same schema
// as migrations/, for tests that exercise real queries without a Postgres
// instance. Postgres-only pieces of the schema (enum types, gen_random_uuid
// defaults) are translated: enums become TEXT and uuid keys are assigned by
// the model hooks.
package testdb

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		display_name  TEXT NOT NULL,
		provider      TEXT NOT NULL DEFAULT 'local',
		provider_id   TEXT,
		is_admin      INTEGER NOT NULL DEFAULT 0,
		member_code   TEXT NOT NULL UNIQUE,
		created_at    DATETIME,
		updated_at    DATETIME
	)`,
	`CREATE TABLE member_code_counters (
		day TEXT PRIMARY KEY,
		seq INTEGER NOT NULL
	)`,
	`CREATE TABLE clubs (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		sport       TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		district    TEXT NOT NULL DEFAULT '',
		founded_on  DATETIME,
		created_by  INTEGER NOT NULL,
		created_at  DATETIME,
		updated_at  DATETIME
	)`,
	`CREATE TABLE memberships (
		id        TEXT PRIMARY KEY,
		club_id   TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
		user_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role      TEXT NOT NULL DEFAULT 'member',
		division  TEXT NOT NULL DEFAULT '',
		joined_at DATETIME,
		UNIQUE (club_id, user_id)
	)`,
	`CREATE TABLE leagues (
		id                TEXT PRIMARY KEY,
		club_id           TEXT NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
		name              TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		league_type       TEXT NOT NULL DEFAULT '',
		format            TEXT NOT NULL DEFAULT '',
		sport             TEXT NOT NULL DEFAULT '',
		starts_at         DATETIME,
		notice            TEXT NOT NULL DEFAULT '',
		sort_order        INTEGER NOT NULL DEFAULT 0,
		status            TEXT NOT NULL DEFAULT 'draft',
		recruit_target    INTEGER NOT NULL DEFAULT 0,
		participant_count INTEGER NOT NULL DEFAULT 0,
		created_by        INTEGER NOT NULL,
		created_at        DATETIME,
		updated_at        DATETIME
	)`,
	`CREATE TABLE participants (
		id         TEXT PRIMARY KEY,
		league_id  TEXT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
		division   TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL,
		paid       INTEGER NOT NULL DEFAULT 0,
		arrived    INTEGER NOT NULL DEFAULT 0,
		attended   INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE draws (
		id         TEXT PRIMARY KEY,
		league_id  TEXT NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE prizes (
		id         TEXT PRIMARY KEY,
		draw_id    TEXT NOT NULL REFERENCES draws(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		quantity   INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE winners (
		id         TEXT PRIMARY KEY,
		prize_id   TEXT NOT NULL REFERENCES prizes(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		division   TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE notices (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL DEFAULT '',
		pinned     INTEGER NOT NULL DEFAULT 0,
		created_by INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE faqs (
		id         TEXT PRIMARY KEY,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE policy_versions (
		id           TEXT PRIMARY KEY,
		slug         TEXT NOT NULL,
		version      INTEGER NOT NULL,
		body         TEXT NOT NULL,
		published_at DATETIME,
		UNIQUE (slug, version)
	)`,
	`CREATE TABLE policy_documents (
		slug               TEXT PRIMARY KEY,
		title              TEXT NOT NULL,
		current_version_id TEXT REFERENCES policy_versions(id),
		updated_at         DATETIME
	)`,
	`INSERT INTO policy_documents (slug, title) VALUES
		('terms', 'Terms of Service'),
		('privacy', 'Privacy Policy')`,
}

// New returns a fresh in-memory database with the full schema applied.
// The pool is pinned to one connection: each sqlite ":memory:" connection is
// its own database, and the foreign_keys pragma is per-connection.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply test schema: %v", err)
		}
	}
	return db
}

// Package database provides helpers for connecting to PostgreSQL and running
// schema migrations. The schema is owned by the versioned SQL files in the
// migrations/ directory, applied on startup with golang-migrate.
package database

import (
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens a connection pool to the PostgreSQL database at the given DSN
// and returns the GORM handle used for all queries. The pool is created once
// at process start and shared by every request; handlers receive it by
// injection rather than through a package global.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// RunMigrations applies any pending "up" migrations from the migrations/
// directory. The migrate library tracks applied versions in the
// schema_migrations table, so re-running on every boot is safe.
func RunMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}

	// ErrNoChange just means the schema is already current.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

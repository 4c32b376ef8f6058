package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/noah-isme/class-routine-api/pkg/config"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	MigrateUp   Direction = "up"
	MigrateDown Direction = "down"
)

// Migrate applies the SQL migrations found in cfg.MigrationsPath. An already
// current schema is not an error.
func Migrate(cfg config.DatabaseConfig, direction Direction) error {
	m, err := migrate.New(SourceURL(cfg.MigrationsPath), URL(cfg))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run %s migrations: %w", direction, err)
	}
	return nil
}

// SourceURL turns a migrations directory into a file:// source URL.
func SourceURL(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	if path == "" {
		path = "./migrations"
	}
	return "file://" + path
}

package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// embeddedDir is the path of the migrations inside Embedded.
const embeddedDir = "migrations"

// Embedded ships the ledger schema inside the binaries.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// Dialect maps a configured database driver to its goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "", config.DBDriverPostgres:
		return "postgres", nil
	case config.DBDriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no goose dialect for driver %q", driver)
	}
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if err := setDialect(driver); err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// RunEmbedded applies the migrations compiled into the binary.
func RunEmbedded(ctx context.Context, db *sql.DB, driver string) error {
	goose.SetBaseFS(Embedded)
	defer goose.SetBaseFS(nil)
	return Run(ctx, db, driver, embeddedDir, "up")
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	if err := setDialect(driver); err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

func setDialect(driver string) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

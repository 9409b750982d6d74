package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/HookFox/internal/pkg/config"
	"github.com/ManuelReschke/HookFox/internal/pkg/env"
)

func main() {
	// Load environment variables from .env
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	cfg, err := config.LoadStorage()
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	sourceURL, dbURL, err := migrationURLs(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL, env.GetEnv("MIGRATIONS_DIR", "migrations"))
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}

	log.Printf("Running migrations from %s against %s database", sourceURL, cfg.DBDriver)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}

	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("Failed to close migration resources: %v, %v", sourceErr, dbErr)
		}
	}()

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to apply migrations: %v", err)
		} else if errors.Is(err, migrate.ErrNoChange) {
			log.Println("No changes: database is already up to date")
		} else {
			log.Println("Migrations applied")
		}

	case "down":
		// roll back one step only
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Failed to roll back the last migration: %v", err)
		} else {
			log.Println("Last migration rolled back")
		}

	case "goto":
		if len(os.Args) < 3 {
			log.Fatalf("Please provide a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}

		if err := m.Migrate(uint(version)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to migrate to version %d: %v", version, err)
		} else if errors.Is(err, migrate.ErrNoChange) {
			log.Printf("No changes: database is already at version %d", version)
		} else {
			log.Printf("Migrated to version %d", version)
		}

	case "status":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Println("No migrations have been applied yet")
			} else {
				log.Fatalf("Failed to read migration version: %v", err)
			}
		} else {
			dirtyStatus := ""
			if dirty {
				dirtyStatus = " (dirty)"
			}
			log.Printf("Current migration version: %d%s", version, dirtyStatus)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

// migrationURLs maps the service's database settings to golang-migrate
// source and database URLs. Each driver has its own SQL directory.
func migrationURLs(driver, dbPath, databaseURL, dir string) (string, string, error) {
	switch driver {
	case config.DriverSQLite:
		if dbPath == "" {
			return "", "", errors.New("DB_PATH is required for sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return "", "", fmt.Errorf("creating database directory: %w", err)
		}
		return "file://" + filepath.Join(dir, "sqlite3"), "sqlite3://" + dbPath, nil

	case config.DriverPostgres:
		if databaseURL == "" {
			return "", "", errors.New("DATABASE_URL is required for postgres")
		}
		return "file://" + filepath.Join(dir, "postgres"), databaseURL, nil

	case config.DriverMySQL:
		if databaseURL == "" {
			return "", "", errors.New("DATABASE_URL is required for mysql")
		}
		dsn := strings.TrimPrefix(databaseURL, "mysql://")
		if !strings.Contains(dsn, "multiStatements=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "multiStatements=true"
		}
		return "file://" + filepath.Join(dir, "mysql"), "mysql://" + dsn, nil

	default:
		return "", "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Available commands:")
	fmt.Println("  up     - Apply all pending migrations")
	fmt.Println("  down   - Roll back the last migration")
	fmt.Println("  goto N - Migrate to version N")
	fmt.Println("  status - Show the current migration version")
}

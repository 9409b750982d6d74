package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURLs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "hooks.db")

	src, db, err := migrationURLs("sqlite", dbPath, "", "migrations")
	require.NoError(t, err)
	assert.Equal(t, "file://migrations/sqlite3", src)
	assert.Equal(t, "sqlite3://"+dbPath, db)
	assert.DirExists(t, filepath.Dir(dbPath))

	src, db, err = migrationURLs("postgres", "", "postgres://u:p@db:5432/hooks?sslmode=disable", "migrations")
	require.NoError(t, err)
	assert.Equal(t, "file://migrations/postgres", src)
	assert.Equal(t, "postgres://u:p@db:5432/hooks?sslmode=disable", db)

	_, db, err = migrationURLs("mysql", "", "u:p@tcp(db:3306)/hooks", "migrations")
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@tcp(db:3306)/hooks?multiStatements=true", db)

	_, db, err = migrationURLs("mysql", "", "mysql://u:p@tcp(db:3306)/hooks?parseTime=true", "migrations")
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@tcp(db:3306)/hooks?parseTime=true&multiStatements=true", db)
}

func TestMigrationURLs_Errors(t *testing.T) {
	_, _, err := migrationURLs("postgres", "", "", "migrations")
	assert.Error(t, err)

	_, _, err = migrationURLs("mysql", "", "", "migrations")
	assert.Error(t, err)

	_, _, err = migrationURLs("oracle", "", "x", "migrations")
	assert.ErrorContains(t, err, "oracle")
}

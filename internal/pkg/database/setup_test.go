package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HookFox/internal/pkg/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:   "test",
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "nested", "dir", "webhook_data.db"),
	}
}

func TestSetupDatabase_SQLiteCreatesDirAndSchema(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := SetupDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	_, statErr := os.Stat(filepath.Dir(cfg.DBPath))
	assert.NoError(t, statErr)
	assert.True(t, db.Migrator().HasTable("webhook_events"))
	assert.True(t, db.Migrator().HasIndex("webhook_events", "idx_webhook_events_event_type"))
	assert.True(t, db.Migrator().HasIndex("webhook_events", "idx_webhook_events_received_at"))
}

func TestSetupDatabase_ReopenIsIdempotent(t *testing.T) {
	cfg := sqliteConfig(t)

	first, err := SetupDatabase(cfg)
	require.NoError(t, err)
	sqlDB, _ := first.DB()
	require.NoError(t, sqlDB.Close())

	second, err := SetupDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := second.DB()
		_ = sqlDB.Close()
	})
	assert.True(t, second.Migrator().HasTable("webhook_events"))
}

func TestDialector_UnsupportedDriver(t *testing.T) {
	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestDialector_NamesMatchDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: config.DriverPostgres, want: "postgres"},
		{driver: config.DriverMySQL, want: "mysql"},
	}

	for _, tt := range tests {
		d, err := Dialector(&config.Config{DBDriver: tt.driver, DatabaseURL: "x"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Name())
	}

	d, err := Dialector(sqliteConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t,
		"u:p@tcp(db:3306)/hooks?charset=utf8mb4&parseTime=True&loc=UTC",
		mysqlDSN("u:p@tcp(db:3306)/hooks"))
	assert.Equal(t,
		"u:p@tcp(db:3306)/hooks?tls=true&charset=utf8mb4&parseTime=True&loc=UTC",
		mysqlDSN("u:p@tcp(db:3306)/hooks?tls=true"))
	assert.Equal(t,
		"u:p@tcp(db:3306)/hooks?parseTime=true",
		mysqlDSN("u:p@tcp(db:3306)/hooks?parseTime=true"))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "data/x.db?_busy_timeout=5000", sqliteDSN("data/x.db"))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN("file::memory:?cache=shared"))
}

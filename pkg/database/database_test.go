package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/socialfeed/config"
)

func TestInitDBSQLiteMigrates(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "test.db"),
		LogLevel:    "silent",
		AutoMigrate: true,
	}}

	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, table := range []string{"users", "profiles", "follows", "fans", "posts", "likes", "comments", "messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{Database: config.DatabaseConfig{Driver: "oracle", DSN: "x"}})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseLogLevel("SILENT"))
	assert.Equal(t, gormlogger.Info, parseLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, parseLogLevel(""))
}

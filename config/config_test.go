package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, AppName+".db", filepath.Base(cfg.DBPath))
	assert.False(t, cfg.Identity().Present())
}

func TestLoadFileInvalidJSONReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Addr)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	cfg.Addr = ":9000"
	cfg.UserEmail = "ada@example.com"
	cfg.GoogleClientSecret = "shh"
	require.NoError(t, cfg.EnsureUserID())
	require.NotEmpty(t, cfg.UserID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "shh")

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", reloaded.Addr)
	assert.Equal(t, cfg.UserID, reloaded.UserID)

	id := reloaded.Identity()
	assert.True(t, id.Present())
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestEnsureUserIDRejectsGarbage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserID = "not-a-uuid"
	assert.Error(t, cfg.EnsureUserID())
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	userID := uuid.New().String()
	env := map[string]string{
		"PCRM_DB_PATH":         "/tmp/x.db",
		"PCRM_USER_ID":         userID,
		"PCRM_LOG_LEVEL":       " debug ",
		"GOOGLE_CLIENT_ID":     "client",
		"GOOGLE_CLIENT_SECRET": "secret",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, userID, cfg.UserID)
	assert.Equal(t, "client", cfg.GoogleClientID)
	assert.Equal(t, "secret", cfg.GoogleClientSecret)
	assert.Equal(t, "/tmp/google-token.json", cfg.TokenPath())
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()

	cfg.LogLevel = "debug"
	assert.Equal(t, log.DebugLevel, cfg.NewLogger(&buf).GetLevel())

	cfg.LogLevel = "bogus"
	logger := cfg.NewLogger(&buf)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.Info("opened database", "path", "/tmp/x.db")
	assert.Contains(t, buf.String(), "opened database")
	assert.Contains(t, buf.String(), "/tmp/x.db")
}

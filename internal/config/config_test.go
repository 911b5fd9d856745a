package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvDBPassword, "secret")

	path := writeConfig(t, `
[database]
dbname = "smc_scheduling"
user = "postgres"

[scheduling]
timezone = "Europe/Moscow"
advance_booking_days = 14
min_booking_notice_minutes = 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=secret")
	assert.Contains(t, cfg.Database.DSN(), "dbname=smc_scheduling")
	assert.Equal(t, 14, cfg.Scheduling.AdvanceBookingDays)
	assert.Equal(t, 60, cfg.Scheduling.MinBookingNoticeMinutes)
	assert.Equal(t, "Europe/Moscow", cfg.Scheduling.Location().String())
	assert.Equal(t, "availability.invalidated", cfg.Invalidation.Channel)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, `
[database]
dbname = "from_env"
`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("does-not-exist.toml")
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Database.DBName)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	tests := []struct {
		name    string
		content string
	}{
		{"missing dbname", `[server]
http_port = 8080`},
		{"bad timezone", `[database]
dbname = "x"
[scheduling]
timezone = "Mars/Olympus"`},
		{"negative advance days", `[database]
dbname = "x"
[scheduling]
advance_booking_days = -1`},
		{"bad port", `[server]
http_port = 70000
[database]
dbname = "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

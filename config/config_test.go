package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "BACKEND_MODE", "BACKEND_URL", "SESSION_STORE", "HOTEL_TIMEZONE", "CORS_ORIGINS", "BACKEND_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendLocal, cfg.Backend.Mode)
	assert.Equal(t, SessionMemory, cfg.Session.Store)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Database.Seed)
	assert.NotNil(t, cfg.Billing.Location)
}

func TestLoad_HTTPModeRequiresURL(t *testing.T) {
	t.Setenv("BACKEND_MODE", "http")
	t.Setenv("BACKEND_URL", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("BACKEND_URL", "http://rooms.internal/api")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
}

func TestLoad_RejectsUnknownModes(t *testing.T) {
	t.Setenv("BACKEND_MODE", "grpc")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("BACKEND_MODE", "local")
	t.Setenv("SESSION_STORE", "disk")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_Timezone(t *testing.T) {
	t.Setenv("HOTEL_TIMEZONE", "Asia/Ho_Chi_Minh")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Billing.Location.String())

	t.Setenv("HOTEL_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	t.Setenv("X_INT", "12")
	t.Setenv("X_BAD_INT", "twelve")
	t.Setenv("X_BOOL", "false")
	assert.Equal(t, 12, getInt("X_INT", 1))
	assert.Equal(t, 1, getInt("X_BAD_INT", 1))
	assert.False(t, getBool("X_BOOL", true))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseList(" https://a.example, ,https://b.example "))
	assert.Equal(t, []string{"*"}, parseList(" , "))
}

func TestResolveMySQLDSN(t *testing.T) {
	t.Setenv("MYSQL_URL", "mysql://app:pw@db.internal:3307/frontdesk")
	dsn, name, err := resolveMySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "frontdesk", name)
	assert.Contains(t, dsn, "app:pw@tcp(db.internal:3307)/frontdesk?")
	assert.Contains(t, dsn, "parseTime=True")

	t.Setenv("MYSQL_URL", "mysql://app:pw@db.internal")
	_, _, err = resolveMySQLDSN()
	assert.Error(t, err)

	t.Setenv("MYSQL_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASS", "p")
	t.Setenv("DB_HOST", "h")
	t.Setenv("DB_PORT", "1")
	t.Setenv("DB_NAME", "n")
	dsn, name, err = resolveMySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "n", name)
	assert.Equal(t, "u:p@tcp(h:1)/n?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

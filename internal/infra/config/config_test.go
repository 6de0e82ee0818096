package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 5, cfg.Advisor.CallCap)
	require.Equal(t, "09:00", cfg.Engine.DayStartClock)
	require.Contains(t, cfg.HTTP.Retry.Exclude, "/api/v1/itineraries/generate")
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
http:
  address: ":9090"
advisor:
  callCap: 3
engine:
  dayStartClock: "08:00"
  dayEndClock: "21:00"
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ADVISOR_CALL_CAP", "7")
	t.Setenv("ENGINE_OPERATING_RADIUS_KM", "80")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	// Environment wins over the file.
	require.Equal(t, 7, cfg.Advisor.CallCap)
	require.Equal(t, "08:00", cfg.Engine.DayStartClock)
	require.Equal(t, 80.0, cfg.Engine.OperatingRadiusKm)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.AllowedOrigins)
	// Untouched sections keep their defaults.
	require.Equal(t, 10*time.Second, cfg.Advisor.CallTimeout)
}

func TestValidate_RejectsBadClocks(t *testing.T) {
	cfg := defaultConfig()
	cfg.Engine.DayStartClock = "nine"
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Engine.DayStartClock = "22:00"
	cfg.Engine.DayEndClock = "09:00"
	require.Error(t, cfg.Validate())
}

func TestValidate_RedisAddrRequiredWhenEnabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Advisor.Redis.Enabled = true
	require.Error(t, cfg.Validate())

	cfg.Advisor.Redis.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())
}

func TestValidate_AdvisorBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Advisor.CallCap = -1
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Advisor.CallTimeout = 0
	require.Error(t, cfg.Validate())
}

func TestValidate_RateLimitBoundsOnlyWhenEnabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.RateLimit.RequestsPerMinute = 0
	require.Error(t, cfg.Validate())

	cfg.HTTP.RateLimit.Enabled = false
	require.NoError(t, cfg.Validate())
}

func TestLoad_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: ["), 0o600))

	t.Setenv("CONFIG_PATH", path)
	_, err := Load()
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"lg/fitness-metrics-go-api/internal/biometrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToml = `
[development]
host = "localhost"
port = 8080
log_level = "debug"
log_to_stdout = true
db_driver = "sqlite"
sqlite_path = "./fitness.db"
body_fat_formula = "navy"

[production]
port = 9000
log_level = "info"
logs_path = "/var/log/fitness/api"
db_driver = "postgres"
fit_inbox_dir = "/srv/fit-inbox"
fit_inbox_user_id = 1
fit_inbox_schedule = "*/15 * * * *"
`

func writeToml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestToml_Get(t *testing.T) {
	dev := &Config{Port: 1}
	prod := &Config{Port: 2}
	tm := &Toml{Development: dev, Production: prod}

	for _, env := range []string{"dev", "Development"} {
		c, err := tm.Get(env)
		require.NoError(t, err)
		assert.Same(t, dev, c)
	}
	for _, env := range []string{"prod", "PRODUCTION"} {
		c, err := tm.Get(env)
		require.NoError(t, err)
		assert.Same(t, prod, c)
	}
	_, err := tm.Get("staging")
	assert.EqualError(t, err, "unknown env: staging")
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeToml(t, testToml))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./fitness.db", cfg.DSN())
	assert.Equal(t, "https://api.openai.com", cfg.OpenAIBaseURL)
	assert.Equal(t, biometrics.Formulas{BMR: biometrics.MifflinStJeor, BodyFat: biometrics.Navy}, cfg.Formulas())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/fitness")
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("production", writeToml(t, testToml))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "postgres://localhost/fitness", cfg.DSN())
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := Load("development", writeToml(t, testToml))
	assert.ErrorContains(t, err, `invalid PORT "eighty"`)
}

func TestLoad_MissingSection(t *testing.T) {
	_, err := Load("production", writeToml(t, "[development]\nport = 1\n"))
	assert.ErrorContains(t, err, "no [production] section")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Port:           0,
		DBDriver:       "mysql",
		BMRFormula:     "katch",
		BodyFatFormula: "calipers",
		FitInboxDir:    "/tmp/inbox",
	}
	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"port 0 out of range",
		`db_driver must be postgres or sqlite, got "mysql"`,
		`unknown bmr formula "katch"`,
		`unknown body fat formula "calipers"`,
		"fit_inbox_schedule is required",
		"fit_inbox_user_id is required",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidate_BadSchedule(t *testing.T) {
	cfg := &Config{
		Port: 8080, DBDriver: "sqlite", SQLitePath: "x.db",
		FitInboxDir: "/tmp/inbox", FitInboxUserID: 1, FitInboxSchedule: "every day",
	}
	assert.ErrorContains(t, cfg.Validate(), "fit_inbox_schedule")
}

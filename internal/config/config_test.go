package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "test-secret")
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, StorageMemory, cfg.Session.Store)
	assert.Equal(t, int64(500), cfg.Registration.Fee)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 2*time.Second, cfg.Simulation.Payment)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 5, cfg.Outbox.ToWorkerConfig().MaxAttempts)
}

func TestLoadParsesDurationsAndLists(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "test-secret")
	path := writeConfig(t, `
jwt:
  ttl: 2h
simulation:
  login: 0s
  registration: 250ms
cors:
  allow_origins: ["https://hms.example"]
clock:
  today: "2024-12-09"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Zero(t, cfg.Simulation.Login)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.Registration)
	assert.Equal(t, []string{"https://hms.example"}, cfg.CORS.ToMiddlewareConfig().AllowOrigins)
	assert.Equal(t, "2024-12-09", cfg.Clock.Today)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "from-env")
	t.Setenv("HMS_SERVER_PORT", "7070")
	t.Setenv("HMS_DATABASE_PASSWORD", "s3cret")
	t.Setenv("HMS_REDIS_URL", "redis://cache:6379/1")
	path := writeConfig(t, "jwt:\n  secret: from-file\nserver:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.ToBrokerConfig().URL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "")
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:     JWTConfig{Secret: "x", TTL: time.Hour},
			Storage: StorageConfig{Driver: StorageMemory},
			Session: SessionConfig{Store: StorageMemory},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown storage", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.driver"},
		{"redis sessions need url", func(c *Config) { c.Session.Store = "redis" }, "redis.url"},
		{"negative fee", func(c *Config) { c.Registration.Fee = -1 }, "registration.fee"},
		{"bad clock", func(c *Config) { c.Clock.Today = "09/12/2024" }, "clock.today"},
		{"zero ttl", func(c *Config) { c.JWT.TTL = 0 }, "jwt.ttl"},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "hms", Password: "pw", Name: "hms", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=hms password=pw dbname=hms sslmode=disable", d.DSN())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// isolate runs the test from an empty directory so no stray .env is picked up
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"CONFIG_FILE", "LOG_LEVEL", "HTTP_HOST", "PORT", "SERPAPI_API_KEY", "SERPAPI_BASE_URL",
		"SERPAPI_TIMEOUT", "CACHE_TTL", "HOT_CACHE_MAX_AGE", "REGISTRY_CAPACITY", "DATABASE_URL",
		"REDIS_URL", "NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "GOOGLE_SHEETS_CREDENTIALS_PATH",
		"WARM_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("SERPAPI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 10000, cfg.Cache.RegistryCapacity)
	assert.Equal(t, 6*time.Hour, cfg.Cache.HotMaxAge)
	assert.Equal(t, 15*time.Second, cfg.SerpAPI.Timeout)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	isolate(t)

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorContains(t, err, "SERPAPI_API_KEY")
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
port: "9000"
cache:
  ttl: 30m
  registry_capacity: 500
warm:
  schedule: "@every 15m"
  queries:
    - query: platform engineer
      location: Remote
      roles: [backend]
    - query: data engineer
      page: 2
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERPAPI_API_KEY", "key")
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "7000", cfg.Port, "environment wins over file")
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 500, cfg.Cache.RegistryCapacity)
	assert.Equal(t, "@every 15m", cfg.Warm.Schedule)
	require.Len(t, cfg.Warm.Queries, 2)

	first := cfg.Warm.Queries[0].Filters()
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, []string{"backend"}, first.Roles)
	assert.Equal(t, 2, cfg.Warm.Queries[1].Filters().Page)
}

func TestLoadDotenv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CACHE_TTL=2h\n"), 0o600))

	// godotenv never overrides variables that are already set, even to ""
	require.NoError(t, os.Unsetenv("CACHE_TTL"))
	t.Setenv("SERPAPI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	isolate(t)
	t.Setenv("SERPAPI_API_KEY", "key")
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	t.Setenv("CACHE_TTL", "")
	t.Setenv("REGISTRY_CAPACITY", "0")
	_, err = Load()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadNeo4jNeedsCredentials(t *testing.T) {
	isolate(t)
	t.Setenv("SERPAPI_API_KEY", "key")
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

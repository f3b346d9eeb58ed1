package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/ayahfinder/internal/config"
)

func TestLoadDefaultConfig(t *testing.T) {
	clearEnvVars(t)

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 1024, cfg.Server.MaxSessions)
	assert.True(t, cfg.Server.EnableWebSocket)

	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, "sources.toml", cfg.Data.ManifestFile)
	assert.Equal(t, 4, cfg.Data.LoadConcurrency)

	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, 3, cfg.Search.ShortQueryMaxLength)
	assert.Equal(t, 25, cfg.Search.ShortLimit)
	assert.Equal(t, 60, cfg.Search.LongLimit)
	assert.Equal(t, 0.5, cfg.Search.MinRatio)
	assert.Equal(t, 2.5, cfg.Search.PhraseBonus)
	assert.Equal(t, 1.5, cfg.Search.CompactBonus)
	assert.Equal(t, 0.3, cfg.Search.AnchorBonus)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnvVars(t)

	envVars := map[string]string{
		"SERVER_ADDR":             "127.0.0.1:9000",
		"SERVER_MAX_SESSIONS":     "16",
		"SERVER_ENABLE_WEBSOCKET": "false",
		"DATA_DIR":                "/srv/quran",
		"DATA_FETCH_TIMEOUT":      "2m",
		"SEARCH_LONG_LIMIT":       "100",
		"SEARCH_MIN_RATIO":        "0.75",
		"LOG_FORMAT":              "json",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg := config.Load()

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 16, cfg.Server.MaxSessions)
	assert.False(t, cfg.Server.EnableWebSocket)
	assert.Equal(t, "/srv/quran", cfg.Data.Dir)
	assert.Equal(t, 2*time.Minute, cfg.Data.FetchTimeout)
	assert.Equal(t, 100, cfg.Search.LongLimit)
	assert.Equal(t, 0.75, cfg.Search.MinRatio)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue int
		expected     int
	}{
		{"Valid int", "TEST_INT", "42", 10, 42},
		{"Invalid int", "TEST_INT_INVALID", "not_a_number", 10, 10},
		{"Negative int", "TEST_INT_NEG", "-5", 10, -5},
		{"Non-existing env var", "NON_EXISTENT", "", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			assert.Equal(t, tt.expected, config.GetIntEnv(tt.key, tt.defaultValue))
		})
	}
}

func TestGetFloatEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue float64
		expected     float64
	}{
		{"Valid float", "0.25", 1, 0.25},
		{"Integer", "3", 1, 3},
		{"Invalid float", "abc", 1.5, 1.5},
		{"Empty", "", 2.5, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_FLOAT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetFloatEnv("TEST_FLOAT", tt.defaultValue))
		})
	}
}

func TestGetBoolAndDurationEnv(t *testing.T) {
	t.Setenv("TEST_BOOL", "1")
	assert.True(t, config.GetBoolEnv("TEST_BOOL", false))
	t.Setenv("TEST_BOOL", "invalid")
	assert.True(t, config.GetBoolEnv("TEST_BOOL", true))

	t.Setenv("TEST_DURATION", "1h30m")
	assert.Equal(t, 90*time.Minute, config.GetDurationEnv("TEST_DURATION", time.Second))
	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Second, config.GetDurationEnv("TEST_DURATION", time.Second))

	assert.Equal(t, "default", config.GetStringEnv("NON_EXISTENT_STRING", "default"))
}

func TestParseManifest(t *testing.T) {
	m, err := config.ParseManifest([]byte(`
corpus = "quran.json.xz"
translation = "https://example.com/en.sahih.json"

[[commentary]]
id = "muyassar"
label = "الميسر"
location = "tafseer_muyassar.json"

[[commentary]]
id = "saadi"
location = "tafseer_saadi.json"
strip_markup = true
`))
	require.NoError(t, err)

	assert.Equal(t, "quran.json.xz", m.Corpus)
	assert.Empty(t, m.Surahs)
	require.Len(t, m.Commentary, 2)
	assert.Equal(t, "الميسر", m.Commentary[0].Label)
	assert.Equal(t, "saadi", m.Commentary[1].Label)
	assert.True(t, m.Commentary[1].StripMarkup)

	assert.Equal(t, []string{
		"quran.json.xz",
		"https://example.com/en.sahih.json",
		"tafseer_muyassar.json",
		"tafseer_saadi.json",
	}, m.Locations())
}

func TestParseManifestInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Not TOML", `corpus = `},
		{"Missing corpus", `translation = "en.json"`},
		{"Commentary without location", "corpus = \"q.json\"\n[[commentary]]\nid = \"x\"\n"},
		{"Duplicate ids", "corpus = \"q.json\"\n[[commentary]]\nid = \"x\"\nlocation = \"a\"\n[[commentary]]\nid = \"x\"\nlocation = \"b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseManifest([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()

	m, err := config.LoadManifest(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultManifest(), m)
	assert.Len(t, m.Commentary, 7)

	path := filepath.Join(dir, "sources.toml")
	require.NoError(t, os.WriteFile(path, []byte(`corpus = "q.json"`), 0644))
	m, err = config.LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "q.json", m.Corpus)
	assert.Empty(t, m.Commentary)
}

// clearEnvVars blanks every variable read by Load for the duration of t.
func clearEnvVars(t *testing.T) {
	t.Helper()

	envKeys := []string{
		"SERVER_ADDR", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_MAX_SESSIONS",
		"SERVER_ENABLE_WEBSOCKET", "DATA_DIR", "DATA_MANIFEST", "DATA_LOAD_CONCURRENCY",
		"DATA_FETCH_TIMEOUT", "SEARCH_MIN_QUERY_LENGTH", "SEARCH_SHORT_QUERY_MAX_LENGTH",
		"SEARCH_SHORT_LIMIT", "SEARCH_LONG_LIMIT", "SEARCH_MIN_TERM_LENGTH", "SEARCH_MANY_TERMS",
		"SEARCH_MIN_HITS", "SEARCH_MIN_RATIO", "SEARCH_PHRASE_BONUS", "SEARCH_COMPACT_BONUS",
		"SEARCH_ANCHOR_BONUS", "SEARCH_CACHE_SIZE", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

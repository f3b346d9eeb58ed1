package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the verse search service
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Search SearchConfig
	Log    LogConfig
}

// ServerConfig holds HTTP host configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxSessions     int
	EnableWebSocket bool
}

// DataConfig describes where datasets are read from
type DataConfig struct {
	Dir             string
	ManifestFile    string
	LoadConcurrency int
	FetchTimeout    time.Duration
}

// SearchConfig holds the ranking thresholds
type SearchConfig struct {
	MinQueryLength      int
	ShortQueryMaxLength int
	ShortLimit          int
	LongLimit           int
	MinTermLength       int
	ManyTerms           int
	MinHits             int
	MinRatio            float64
	PhraseBonus         float64
	CompactBonus        float64
	AnchorBonus         float64
	CacheSize           int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:            GetStringEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:     GetDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    GetDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			MaxSessions:     GetIntEnv("SERVER_MAX_SESSIONS", 1024),
			EnableWebSocket: GetBoolEnv("SERVER_ENABLE_WEBSOCKET", true),
		},
		Data: DataConfig{
			Dir:             GetStringEnv("DATA_DIR", "./data"),
			ManifestFile:    GetStringEnv("DATA_MANIFEST", "sources.toml"),
			LoadConcurrency: GetIntEnv("DATA_LOAD_CONCURRENCY", 4),
			FetchTimeout:    GetDurationEnv("DATA_FETCH_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			MinQueryLength:      GetIntEnv("SEARCH_MIN_QUERY_LENGTH", 2),
			ShortQueryMaxLength: GetIntEnv("SEARCH_SHORT_QUERY_MAX_LENGTH", 3),
			ShortLimit:          GetIntEnv("SEARCH_SHORT_LIMIT", 25),
			LongLimit:           GetIntEnv("SEARCH_LONG_LIMIT", 60),
			MinTermLength:       GetIntEnv("SEARCH_MIN_TERM_LENGTH", 2),
			ManyTerms:           GetIntEnv("SEARCH_MANY_TERMS", 3),
			MinHits:             GetIntEnv("SEARCH_MIN_HITS", 2),
			MinRatio:            GetFloatEnv("SEARCH_MIN_RATIO", 0.5),
			PhraseBonus:         GetFloatEnv("SEARCH_PHRASE_BONUS", 2.5),
			CompactBonus:        GetFloatEnv("SEARCH_COMPACT_BONUS", 1.5),
			AnchorBonus:         GetFloatEnv("SEARCH_ANCHOR_BONUS", 0.3),
			CacheSize:           GetIntEnv("SEARCH_CACHE_SIZE", 512),
		},
		Log: LogConfig{
			Level:  GetStringEnv("LOG_LEVEL", "info"),
			Format: GetStringEnv("LOG_FORMAT", "text"),
		},
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

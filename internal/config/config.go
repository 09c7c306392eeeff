package config

import (
	"os"
	"strings"
	"time"
)

// Config holds process-level settings read from the environment
type Config struct {
	HTTPPort       string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	JWTSecret      string
	SessionTTL     time.Duration
	StudyFile      string
	CatalogFile    string
	SinkBackend    string // "mongo" or "memory"
	SessionBackend string // "redis" or "memory"
	MonitorKey     string
}

// Load reads all env vars and builds the config
func Load() *Config {
	return &Config{
		HTTPPort:       getEnv("PORT", "8080"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "frictionstudy"),
		RedisAddr:      strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTTL:     getDurationEnv("SESSION_TTL", 6*time.Hour),
		StudyFile:      getEnv("STUDY_CONFIG", ""),
		CatalogFile:    getEnv("CATALOG_PATH", ""),
		SinkBackend:    getEnv("SINK_BACKEND", "mongo"),
		SessionBackend: getEnv("SESSION_BACKEND", "redis"),
		MonitorKey:     getEnv("MONITOR_KEY", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

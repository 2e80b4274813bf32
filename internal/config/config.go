package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	MongoURI        string
	MongoDB         string
	QueryTimeout    time.Duration
	ReportLimit     int
	WindowDays      int
	RefreshInterval time.Duration
	LogLevel        slog.Level
}

func (c Config) IsDevelopment() bool { return c.Env == "development" }

// FromEnv reads the process environment. In development a local .env file
// is loaded first when present; real environment variables win.
func FromEnv() Config {
	if envOr("APP_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		Env:             envOr("APP_ENV", "development"),
		Port:            envOr("PORT", "8080"),
		MongoURI:        envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         envOr("MONGO_DB", "typo"),
		QueryTimeout:    seconds("QUERY_TIMEOUT_SECONDS", 15*time.Second),
		ReportLimit:     intOr("REPORT_LIMIT", 50),
		WindowDays:      intOr("SIGNUP_WINDOW_DAYS", 180),
		RefreshInterval: seconds("REFRESH_INTERVAL_SECONDS", 10*time.Minute),
		LogLevel:        lvl,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func intOr(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func seconds(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
			return d
		}
	}
	return def
}

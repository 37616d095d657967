package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	NotifierLog   = "log"
	NotifierRedis = "redis"
)

type Config struct {
	Port string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	RedisAddr string
	RedisDB   int

	JWTSecret    string
	CookieName   string
	CookieSecure bool

	AllowedOrigins []string

	Notifier      string
	NotifyChannel string

	CommunityScanLimit int
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getenvDefault("PORT", "8080"),
		StoreDriver:   strings.ToLower(getenvDefault("STORE_DRIVER", DriverMongo)),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getenvDefault("MONGODB_DATABASE", "hangouts"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getenvDefault("REDIS_ADDR", "localhost:6379"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CookieName:    getenvDefault("SESSION_COOKIE_NAME", "hangouts_session"),
		Notifier:      strings.ToLower(getenvDefault("NOTIFIER", NotifierLog)),
		NotifyChannel: getenvDefault("NOTIFY_CHANNEL", "notifications"),
		AllowedOrigins: splitList(getenvDefault("CORS_ORIGINS",
			"http://localhost:3000,http://localhost:5173")),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	var err error
	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CommunityScanLimit, err = getenvInt("STATS_COMMUNITY_SCAN_LIMIT", 1000); err != nil {
		return nil, err
	}
	if cfg.CommunityScanLimit <= 0 {
		return nil, fmt.Errorf("STATS_COMMUNITY_SCAN_LIMIT must be positive")
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if cfg.CookieSecure, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid COOKIE_SECURE %q: %w", v, err)
		}
	}

	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI environment variable is not set")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.Notifier {
	case NotifierLog, NotifierRedis:
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q", cfg.Notifier)
	}

	return cfg, nil
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

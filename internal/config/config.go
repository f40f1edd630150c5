package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	DatabaseURL     string
	RedisAddr       string
	SessionSecret   string
	SessionTTL      time.Duration
	BaseURL         string
	TLSCert         string
	TLSKey          string
	JWTIssuer       string
	JWTSigningKey   string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	RateLimitPerMin int

	// Optional bootstrap admin; seeded on startup when all three are set.
	AdminName     string
	AdminUsername string
	AdminPassword string
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseURL:     databaseURL(),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		SessionSecret:   getEnv("SESSION_SECRET", "dev-session-secret-change"),
		SessionTTL:      durationEnv("SESSION_TTL", 12*time.Hour),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		TLSCert:         getEnv("TLS_CERT", ""),
		TLSKey:          getEnv("TLS_KEY", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "rollcall"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:       durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:      durationEnv("REFRESH_TTL", 24*time.Hour),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		AdminName:       getEnv("ADMIN_NAME", ""),
		AdminUsername:   getEnv("ADMIN_USERNAME", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
	}
}

// databaseURL prefers a full DATABASE_URL and otherwise composes one from the
// discrete DB_* variables the deployment environment provides.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "rollcall")
	pass := getEnv("DB_PASSWORD", "rollcall")
	name := getEnv("DB_NAME", "rollcall")
	ssl := getEnv("DB_SSLMODE", "disable")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(user), url.QueryEscape(pass), host, port, name, ssl)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

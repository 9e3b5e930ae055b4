// Package config handles loading and validating runtime configuration for the
// ClubHub API. Configuration is read from environment variables (optionally
// seeded from a .env file in development) so the same binary can run in dev,
// staging, and production without code changes.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OAuthProvider holds the client credentials for one social login provider.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Config holds all runtime configuration values for the application.
type Config struct {
	Port        string // TCP port the HTTP server listens on (e.g. "8080")
	DatabaseURL string // PostgreSQL connection string
	Env         string // "development", "staging", or "production"

	JWTSecret string        // HMAC key for signing session tokens
	JWTExpiry time.Duration // session token lifetime (default 7 days)

	Google OAuthProvider
	Kakao  OAuthProvider
	Naver  OAuthProvider
}

// Load reads configuration from environment variables and returns a populated
// Config. A missing .env file is fine — in production the real environment
// variables are set by the deployment platform.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	// Session lifetime in hours; 168h (7 days) unless overridden.
	expiry := 168 * time.Hour
	if h := os.Getenv("JWT_EXPIRY_HOURS"); h != "" {
		if n, err := strconv.Atoi(h); err == nil && n > 0 {
			expiry = time.Duration(n) * time.Hour
		}
	}

	return &Config{
		Port:        port,
		DatabaseURL: os.Getenv("DATABASE_URL"), // required
		Env:         env,
		JWTSecret:   os.Getenv("JWT_SECRET"), // required
		JWTExpiry:   expiry,
		Google:      providerFromEnv("GOOGLE"),
		Kakao:       providerFromEnv("KAKAO"),
		Naver:       providerFromEnv("NAVER"),
	}
}

func providerFromEnv(prefix string) OAuthProvider {
	return OAuthProvider{
		ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
		RedirectURL:  os.Getenv(prefix + "_REDIRECT_URL"),
	}
}

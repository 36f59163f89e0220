package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	// Session tokens are signed with this process-wide secret.
	JWTSecret string
	// Lowercased emails allowed to log in. Empty means nobody.
	ApprovedEmails []string

	EightAuthURL      string
	EightClientAPIURL string
	EightClientHost   string
	EightClientID     string
	EightClientSecret string

	StorageBackend string // "file" or "postgres"
	PostgresDSN    string
	UsersFile      string
	ProfilesFile   string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:               getEnv("APP_ENV", "development"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			Port:              getEnv("PORT", "8088"),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			ApprovedEmails:    splitEmails(getEnv("APPROVED_EMAILS", "")),
			EightAuthURL:      getEnv("EIGHT_AUTH_URL", "https://auth-api.8slp.net/v1/tokens"),
			EightClientAPIURL: getEnv("EIGHT_CLIENT_API_URL", "https://client-api.8slp.net/v1"),
			EightClientHost:   getEnv("EIGHT_CLIENT_HOST", "client-api.8slp.net"),
			EightClientID:     getEnv("EIGHT_CLIENT_ID", "0894c7f33bb94800a03f1f4df13a4f38"),
			EightClientSecret: getEnv("EIGHT_CLIENT_SECRET", ""),
			StorageBackend:    getEnv("STORAGE_BACKEND", "file"),
			PostgresDSN:       getEnv("POSTGRES_DSN", ""),
			UsersFile:         getEnv("USERS_FILE", "data/users.json"),
			ProfilesFile:      getEnv("PROFILES_FILE", "data/temperature_profiles.json"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageBackend == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.StorageBackend == "file" && (c.UsersFile == "" || c.ProfilesFile == "") {
		return errors.New("File storage requires USERS_FILE and PROFILES_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

// IsApproved checks the login allow-list, case-insensitively.
func (c *Config) IsApproved(email string) bool {
	email = strings.ToLower(email)
	for _, approved := range c.ApprovedEmails {
		if approved == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitEmails(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			emails = append(emails, p)
		}
	}
	return emails
}

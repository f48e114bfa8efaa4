// Package config provides configuration management for Atlas
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Server
	Port               string
	CORSAllowedOrigins []string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		Port:       getEnv("PORT", "8090"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTExpiry:  24 * time.Hour,
	}

	for key, val := range map[string]string{
		"DB_HOST": cfg.DBHost,
		"DB_USER": cfg.DBUser,
		"DB_NAME": cfg.DBName,
	} {
		if val == "" {
			return nil, fmt.Errorf("missing required env: %s", key)
		}
	}

	if hours := os.Getenv("JWT_EXPIRY_HOURS"); hours != "" {
		if h, err := strconv.Atoi(hours); err == nil && h > 0 {
			cfg.JWTExpiry = time.Duration(h) * time.Hour
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = strings.Split(origins, ",")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr           string
	DatabaseURL    string
	TokenSecret    string
	TokenTTL       time.Duration
	DataDir        string
	MaxUploadBytes int64
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// LoadConfig reads settings from the environment. TOKEN_SECRET is the only
// required value; everything else has a sensible default. TOKEN_TTL accepts
// a Go duration string and zero disables token expiry.
func LoadConfig() (Config, error) {
	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: getenv("DATABASE_URL", "postgres://postgres:postgres@db:5432/taskboard?sslmode=disable"),
		TokenSecret: os.Getenv("TOKEN_SECRET"),
		DataDir:     getenv("DATA_DIR", "./data/attachments"),
	}
	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("TOKEN_SECRET is required")
	}
	if ttl := getenv("TOKEN_TTL", "720h"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("parse TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}
	maxUpload := getenv("MAX_UPLOAD_BYTES", "10485760")
	n, err := strconv.ParseInt(maxUpload, 10, 64)
	if err != nil || n <= 0 {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_BYTES: %q", maxUpload)
	}
	cfg.MaxUploadBytes = n
	return cfg, nil
}

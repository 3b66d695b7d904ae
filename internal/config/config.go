package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultBaseURL = "http://localhost/v1"

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

func (s S3) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type Telegram struct {
	Token  string
	ChatID int64
}

func (t Telegram) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type Config struct {
	APIKey      string
	BaseURL     string
	BasePath    string // base dir for relative upload/download paths
	Port        string
	HTTPTimeout time.Duration
	S3          S3
	Telegram    Telegram
}

// Load resolves configuration with flag > env > .env precedence.
// godotenv never overrides variables already present in the environment,
// so loading the .env file first still keeps env ahead of it.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("dubkit", flag.ContinueOnError)
	apiKey := fs.String("api-key", "", "Speechlab API key (env SPEECHLAB_API_KEY)")
	baseURL := fs.String("base-url", "", "Speechlab API base URL (env SPEECHLAB_API_BASE_URL)")
	basePath := fs.String("base-path", "", "base directory for relative media paths (env SPEECHLAB_MCP_BASE_PATH)")
	port := fs.String("port", "", "HTTP listen port (env PORT)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      resolve(*apiKey, "SPEECHLAB_API_KEY", ""),
		BaseURL:     resolve(*baseURL, "SPEECHLAB_API_BASE_URL", defaultBaseURL),
		BasePath:    resolve(*basePath, "SPEECHLAB_MCP_BASE_PATH", ""),
		Port:        resolve(*port, "PORT", "8080"),
		HTTPTimeout: 30 * time.Second,
		S3: S3{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
		},
		Telegram: Telegram{
			Token:  os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID: envInt64("TELEGRAM_ADMIN_CHAT_ID"),
		},
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SPEECHLAB_API_KEY is not set")
	}

	return cfg, nil
}

// resolve — first non-empty value wins: flag, then env, then fallback.
func resolve(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

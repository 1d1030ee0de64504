package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment.
// It is built once in main and passed down explicitly; no package keeps
// a mutable copy.
type Config struct {
	Env        string
	ListenAddr string

	DatabaseURL string
	RedisAddr   string

	JWTSecret          string
	TelegramLinkSecret string

	UserBotToken string
	UserBotName  string
	OpsBotToken  string
	OpsChatID    int64

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	FrontendURL string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, relying on environment variables")
	}

	cfg := &Config{
		Env:                getenv("APP_ENV", "development"),
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TelegramLinkSecret: os.Getenv("TELEGRAM_LINK_SECRET"),
		UserBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		UserBotName:        os.Getenv("TELEGRAM_BOT_NAME"),
		OpsBotToken:        os.Getenv("TELEGRAM_OPS_BOT_TOKEN"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPass:           os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:           getenv("SMTP_FROM", os.Getenv("SMTP_USER")),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:3000"),
	}

	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port

	if v := os.Getenv("TELEGRAM_OPS_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_OPS_CHAT_ID: %w", err)
		}
		cfg.OpsChatID = id
	}

	if cfg.DatabaseURL == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("DATABASE_URL and JWT_SECRET must be set")
	}
	return cfg, nil
}

// Production reports whether the server runs with production error masking.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

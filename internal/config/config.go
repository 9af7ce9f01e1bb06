package config

import "os"

type Config struct {
	App      AppConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Telegram TelegramConfig
	Coach    CoachConfig
	Postgres PostgresConfig
}

type AppConfig struct {
	Addr           string
	BaseURL        string
	AllowedOrigins string
}

type AuthConfig struct {
	CodeTTL         string
	SessionTTL      string
	CookieSecure    string
	CookieSameSite  string
	CookieDomain    string
	CookiePath      string
	LinkTokenSecret string
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type TelegramConfig struct {
	BotToken      string
	BotUsername   string
	WebhookSecret string
}

type CoachConfig struct {
	APIKey         string
	PlanModel      string
	VisionModel    string
	EmbeddingModel string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		App: AppConfig{
			Addr:           getenv("APP_ADDR", ":8080"),
			BaseURL:        getenv("APP_BASE_URL", "http://localhost:8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Auth: AuthConfig{
			CodeTTL:         getenv("LOGIN_CODE_TTL", "10m"),
			SessionTTL:      getenv("SESSION_TTL", "336h"),
			CookieSecure:    os.Getenv("AUTH_COOKIE_SECURE"),
			CookieSameSite:  os.Getenv("AUTH_COOKIE_SAMESITE"),
			CookieDomain:    os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:      os.Getenv("AUTH_COOKIE_PATH"),
			LinkTokenSecret: os.Getenv("LINK_TOKEN_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			BotUsername:   os.Getenv("TELEGRAM_BOT_USERNAME"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},
		Coach: CoachConfig{
			APIKey:         os.Getenv("AI_API_KEY"),
			PlanModel:      getenv("AI_PLAN_MODEL", "gemini-2.0-flash"),
			VisionModel:    getenv("AI_VISION_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getenv("AI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

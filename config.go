package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultLatitude     = 52.2978
	defaultLongitude    = 104.2964
	defaultTimezone     = "Asia/Irkutsk"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	defaultChartURL     = "https://quickchart.io/chart"
	defaultWebhookPort  = "10000"
	defaultForecastDays = 16
	defaultChartDays    = 7
	defaultWorkers      = 4
)

type Config struct {
	TelegramToken string
	WebhookURL    string
	WebhookSecret string
	Port          string
	DatabaseURL   string
	Latitude      float64
	Longitude     float64
	Timezone      string
	ForecastDays  int
	ChartDays     int
	ForecastURL   string
	ChartURL      string
	MenuEnabled   bool
	Workers       int
	LogLevel      string
	Debug         bool
}

// Webhook reports whether updates are pushed by Telegram instead of polled.
func (c Config) Webhook() bool {
	return c.WebhookURL != ""
}

// WebhookPath is the local route Telegram posts updates to.
func (c Config) WebhookPath() string {
	return "/webhook/" + c.WebhookSecret
}

// LoadConfig reads an optional .env file and then the process environment.
// A missing bot token is the only fatal condition.
func LoadConfig() (Config, error) {
	// .env is optional, real environment variables win
	_ = godotenv.Load()
	return configFromEnv()
}

func configFromEnv() (Config, error) {
	cfg := Config{
		TelegramToken: firstEnv("BOT_TOKEN", "TELEGRAM_BOT_TOKEN"),
		WebhookURL:    strings.TrimRight(firstEnv("RENDER_EXTERNAL_URL", "TELEGRAM_WEBHOOK_URL"), "/"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Latitude:      parseEnvFloat("LATITUDE", defaultLatitude),
		Longitude:     parseEnvFloat("LONGITUDE", defaultLongitude),
		Timezone:      envOr("TIMEZONE", defaultTimezone),
		ForecastDays:  clampHorizon(parseEnvInt("FORECAST_DAYS", defaultForecastDays)),
		ChartDays:     clampHorizon(parseEnvInt("CHART_DAYS", defaultChartDays)),
		ForecastURL:   envOr("FORECAST_API_URL", defaultForecastURL),
		ChartURL:      envOr("CHART_API_URL", defaultChartURL),
		MenuEnabled:   parseEnvBool("BOT_MENU", true),
		Workers:       parseEnvInt("WORKERS", defaultWorkers),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Debug:         parseEnvBool("BOT_DEBUG", false),
	}
	if cfg.TelegramToken == "" {
		return Config{}, fmt.Errorf("load config: %w", ErrMissingToken)
	}
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = cfg.TelegramToken
	}
	if cfg.Port == "" {
		cfg.Port = defaultWebhookPort
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func clampHorizon(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func parseEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return out
}

func parseEnvFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return out
}

func parseEnvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return out
}

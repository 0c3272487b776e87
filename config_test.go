package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"BOT_TOKEN", "TELEGRAM_BOT_TOKEN", "RENDER_EXTERNAL_URL", "TELEGRAM_WEBHOOK_URL",
	"WEBHOOK_SECRET", "PORT", "DATABASE_URL", "LATITUDE", "LONGITUDE", "TIMEZONE",
	"FORECAST_DAYS", "CHART_DAYS", "FORECAST_API_URL", "CHART_API_URL", "BOT_MENU",
	"WORKERS", "LOG_LEVEL", "BOT_DEBUG",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestConfigMissingToken(t *testing.T) {
	clearConfigEnv(t)

	_, err := configFromEnv()
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.TelegramToken)
	require.False(t, cfg.Webhook())
	require.Equal(t, "/webhook/123:abc", cfg.WebhookPath())
	require.Equal(t, defaultWebhookPort, cfg.Port)
	require.Equal(t, defaultLatitude, cfg.Latitude)
	require.Equal(t, defaultLongitude, cfg.Longitude)
	require.Equal(t, defaultTimezone, cfg.Timezone)
	require.Equal(t, 16, cfg.ForecastDays)
	require.Equal(t, 7, cfg.ChartDays)
	require.Equal(t, defaultForecastURL, cfg.ForecastURL)
	require.Equal(t, defaultChartURL, cfg.ChartURL)
	require.True(t, cfg.MenuEnabled)
	require.Equal(t, defaultWorkers, cfg.Workers)
	require.False(t, cfg.Debug)
}

func TestConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "456:def")
	t.Setenv("RENDER_EXTERNAL_URL", "https://irk-weather.onrender.com/")
	t.Setenv("WEBHOOK_SECRET", "s3cr3t")
	t.Setenv("PORT", "8080")
	t.Setenv("LATITUDE", "55.75")
	t.Setenv("LONGITUDE", "not-a-number")
	t.Setenv("FORECAST_DAYS", "40")
	t.Setenv("CHART_DAYS", "0")
	t.Setenv("BOT_MENU", "false")
	t.Setenv("WORKERS", "-3")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	require.Equal(t, "456:def", cfg.TelegramToken)
	require.True(t, cfg.Webhook())
	require.Equal(t, "https://irk-weather.onrender.com", cfg.WebhookURL)
	require.Equal(t, "/webhook/s3cr3t", cfg.WebhookPath())
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 55.75, cfg.Latitude)
	require.Equal(t, defaultLongitude, cfg.Longitude)
	require.Equal(t, MaxForecastDays, cfg.ForecastDays)
	require.Equal(t, 1, cfg.ChartDays)
	require.False(t, cfg.MenuEnabled)
	require.Equal(t, 1, cfg.Workers)
}

func TestConfigBotTokenWins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("BOT_TOKEN", "primary")
	t.Setenv("TELEGRAM_BOT_TOKEN", "fallback")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	require.Equal(t, "primary", cfg.TelegramToken)
}

func TestNewBotRequiresToken(t *testing.T) {
	b, err := NewBot(Config{}, testLogger())
	require.ErrorIs(t, err, ErrMissingToken)
	require.Nil(t, b)
}

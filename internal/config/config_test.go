package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DATA_PROVIDER", "VSTRADER_BASE_URL", "VSTRADER_API_KEY",
	"BENCHMARK", "FINNHUB_API_KEY", "GEMINI_API_KEY", "GEMINI_MODEL", "CRON_WATCHLIST", "CRON_PORTFOLIO",
	"CRON_REPORT", "STATE_FILE", "SQLITE_PATH", "HTTP_ADDR", "LOG_LEVEL", "HTTPS_PROXY", "DATA_WORKERS",
	"RISK_FREE_RATE", "LOG_PRETTY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "^GSPC", cfg.DataSource.Benchmark)
	assert.Equal(t, "SPY", cfg.DataSource.RiskBenchmark)
	assert.Equal(t, 4, cfg.DataSource.Workers)
	assert.Equal(t, 0.95, cfg.Risk.VaRConfidence)
	assert.Equal(t, 0.01, cfg.Risk.RiskFreeRate)
	assert.Equal(t, 365, cfg.Risk.LookbackDays)
	assert.Equal(t, 60, cfg.News.LookbackDays)
	assert.Equal(t, "data/portfolio.json", cfg.Store.StateFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0 30 16 * * 1-5", cfg.Schedule.WatchlistCron)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Telegram.BotToken")
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "42"
data_source:
  base_url: http://vstrader.local
  workers: 8
risk:
  var_confidence: 0.99
log:
  level: debug
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("DATA_WORKERS", "2")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "vstrader", cfg.DataSource.Provider)
	assert.Equal(t, 2, cfg.DataSource.Workers)
	assert.Equal(t, 0.99, cfg.Risk.VaRConfidence)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestValidate_Ranges(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"confidence": "risk:\n  var_confidence: 1.5\n",
		"workers":    "data_source:\n  workers: 100\n",
		"log level":  "log:\n  level: loud\n",
		"provider":   "data_source:\n  provider: bloomberg\n",
		"vstrader":   "data_source:\n  provider: vstrader\n",
		"lookback":   "risk:\n  lookback_days: 5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "telegram:\n  bot_token: t\n  chat_id: c\n"+body)
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "telegram: [\n"))
	assert.Error(t, err)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram   Telegram   `yaml:"telegram"`
	DataSource DataSource `yaml:"data_source"`
	News       News       `yaml:"news"`
	AI         AI         `yaml:"ai"`
	Schedule   Schedule   `yaml:"schedule"`
	Store      Store      `yaml:"store"`
	Database   Database   `yaml:"database"`
	HTTP       HTTP       `yaml:"http"`
	Log        Log        `yaml:"log"`
	Risk       Risk       `yaml:"risk"`
	Proxy      string     `yaml:"proxy"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token" validate:"required"`
	ChatID   string `yaml:"chat_id" validate:"required"`
}

type DataSource struct {
	// Provider is yahoo, vstrader or mock. Empty picks vstrader when BaseURL is set.
	Provider      string `yaml:"provider" validate:"omitempty,oneof=yahoo vstrader mock"`
	BaseURL       string `yaml:"base_url" validate:"required_if=Provider vstrader"`
	APIKey        string `yaml:"api_key"`
	Benchmark     string `yaml:"benchmark" default:"^GSPC" validate:"required"`
	RiskBenchmark string `yaml:"risk_benchmark" default:"SPY" validate:"required"`
	Workers       int    `yaml:"workers" default:"4" validate:"gte=1,lte=32"`
}

type News struct {
	FinnhubAPIKey string `yaml:"finnhub_api_key"`
	LookbackDays  int    `yaml:"lookback_days" default:"60" validate:"gte=1,lte=365"`
}

type AI struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	Model        string `yaml:"model" default:"gemini-2.0-flash"`
}

type Schedule struct {
	WatchlistCron string `yaml:"watchlist_cron" default:"0 30 16 * * 1-5"`
	PortfolioCron string `yaml:"portfolio_cron" default:"0 5 16 * * 1-5"`
	ReportCron    string `yaml:"report_cron" default:"0 0 9 * * 6"`
}

type Store struct {
	StateFile string `yaml:"state_file" default:"data/portfolio.json" validate:"required"`
}

type Database struct {
	SQLitePath string `yaml:"sqlite_path" default:"data/portfolio_lens.db"`
}

type HTTP struct {
	// Addr is the API listen address. Empty disables the API.
	Addr string `yaml:"addr" default:":8080"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

type Risk struct {
	RiskFreeRate  float64 `yaml:"risk_free_rate" default:"0.01" validate:"gte=0,lt=1"`
	VaRConfidence float64 `yaml:"var_confidence" default:"0.95" validate:"gt=0,lt=1"`
	LookbackDays  int     `yaml:"lookback_days" default:"365" validate:"gte=30"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies .env and environment variable overrides
// and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "vstrader"
		}
	}
	return cfg, nil
}

// Environment variable overrides
func applyEnv(cfg *Config) {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"DATA_PROVIDER":      &cfg.DataSource.Provider,
		"VSTRADER_BASE_URL":  &cfg.DataSource.BaseURL,
		"VSTRADER_API_KEY":   &cfg.DataSource.APIKey,
		"BENCHMARK":          &cfg.DataSource.Benchmark,
		"FINNHUB_API_KEY":    &cfg.News.FinnhubAPIKey,
		"GEMINI_API_KEY":     &cfg.AI.GeminiAPIKey,
		"GEMINI_MODEL":       &cfg.AI.Model,
		"CRON_WATCHLIST":     &cfg.Schedule.WatchlistCron,
		"CRON_PORTFOLIO":     &cfg.Schedule.PortfolioCron,
		"CRON_REPORT":        &cfg.Schedule.ReportCron,
		"STATE_FILE":         &cfg.Store.StateFile,
		"SQLITE_PATH":        &cfg.Database.SQLitePath,
		"HTTP_ADDR":          &cfg.HTTP.Addr,
		"LOG_LEVEL":          &cfg.Log.Level,
		"HTTPS_PROXY":        &cfg.Proxy,
	}
	for env, dst := range str {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("DATA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.Workers = n
		}
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.RiskFreeRate = f
		}
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.Log.Pretty, _ = strconv.ParseBool(v)
	}
}

// Validate checks that all required fields are set and values are in range.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath turns "Config.DataSource.Workers" into "DataSource.Workers".
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates all settings of the risk CLI and the Telegram bot.
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Data      DataConfig      `mapstructure:"data"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Screen    ScreenConfig    `mapstructure:"screen"`
	Output    OutputConfig    `mapstructure:"output"`
	Report    ReportConfig    `mapstructure:"report"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Server    ServerConfig    `mapstructure:"server"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// DataConfig controls market data downloads and the sqlite cache.
type DataConfig struct {
	// CachePath is the sqlite file; empty disables caching.
	CachePath string        `mapstructure:"cache_path"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type PortfolioConfig struct {
	Tickers   []string `mapstructure:"tickers"`
	Start     string   `mapstructure:"start"`
	Benchmark string   `mapstructure:"benchmark"`
}

type ScreenConfig struct {
	// Period is "max" or a lookback window such as 5y.
	Period    string `mapstructure:"period"`
	SMAPeriod int    `mapstructure:"sma_period"`
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

type ReportConfig struct {
	Style string `mapstructure:"style"`
}

type TelegramConfig struct {
	BotToken   string `mapstructure:"bot_token"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("data.cache_path", "data/prices.db")
	v.SetDefault("data.cache_ttl", 12*time.Hour)
	v.SetDefault("data.timeout", 20*time.Second)

	v.SetDefault("portfolio.tickers", []string{"NVDA", "AMD", "INTC", "CSCO", "AVGO", "GLW", "DELL", "STX", "WDC", "VRT", "CAT", "ETN"})
	v.SetDefault("portfolio.start", "2000-01-01")
	v.SetDefault("portfolio.benchmark", "SPY")

	v.SetDefault("screen.period", "max")
	v.SetDefault("screen.sma_period", 200)

	v.SetDefault("output.dir", "charts")
	v.SetDefault("output.width", 900)
	v.SetDefault("output.height", 600)

	v.SetDefault("report.style", "auto")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("server.port", "9095")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
}

// Load reads .env, then config.yaml (from file when given, otherwise . and ./configs),
// then environment variables such as TELEGRAM_BOT_TOKEN or DATA_CACHE_TTL.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names used by earlier deployments
	_ = v.BindEnv("telegram.webhook_url", "TELEGRAM_WEBHOOK_URL", "WEBHOOK_PUBLIC_URL")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("data.cache_path", "DATA_CACHE_PATH", "DB_PATH")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	for i, t := range cfg.Portfolio.Tickers {
		cfg.Portfolio.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	return &cfg, nil
}

// ValidateBot reports the settings the Telegram webhook cannot run without.
func (c *Config) ValidateBot() error {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "telegram.bot_token (TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.WebhookURL == "" {
		missing = append(missing, "telegram.webhook_url (TELEGRAM_WEBHOOK_URL)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing config: %s", strings.Join(missing, ", "))
	}
	return nil
}

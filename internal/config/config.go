package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Telegram struct {
		Token         string `yaml:"token"`
		Mode          string `yaml:"mode"`
		WebhookURL    string `yaml:"webhook_url"`
		WebhookSecret string `yaml:"webhook_secret"`
		PollTimeout   string `yaml:"poll_timeout"`
		APIURL        string `yaml:"api_url"`
	} `yaml:"telegram"`
	Operator struct {
		ChatID    int64  `yaml:"chat_id"`
		FeedToken string `yaml:"feed_token"`
	} `yaml:"operator"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Reference struct {
		File string `yaml:"file"`
	} `yaml:"reference"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// Load reads YAML config from path and applies environment overrides for secrets.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if cfg.Telegram.Mode == "" {
		cfg.Telegram.Mode = ModePolling
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv("OPERATOR_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OPERATOR_CHAT_ID: %w", err)
		}
		c.Operator.ChatID = id
	}
	return nil
}

// Validate checks the settings the bot cannot start without.
func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured")
	}
	switch c.Telegram.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Telegram.WebhookURL == "" {
			return fmt.Errorf("telegram webhook_url required in webhook mode")
		}
	default:
		return fmt.Errorf("unknown telegram mode %q", c.Telegram.Mode)
	}
	if c.Postgres.URL == "" && c.Reference.File == "" {
		return fmt.Errorf("either postgres url or reference file must be configured")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

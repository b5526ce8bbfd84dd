package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string            `yaml:"bot_token"`
		ChatID   string            `yaml:"chat_id"`
		ChatIDs  map[string]string `yaml:"chat_ids"` // private chats keyed by p1/p2
	} `yaml:"telegram"`
	Coach struct {
		GeminiAPIKey   string `yaml:"gemini_api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Recent         int    `yaml:"recent"`
	} `yaml:"coach"`
	Game struct {
		CoupleID       string `yaml:"couple_id"`
		UndoDepth      int    `yaml:"undo_depth"`
		CardSize       int    `yaml:"card_size"`
		InactivityDays int    `yaml:"inactivity_days"`
		Seed           string `yaml:"seed"` // empty seeds from the OS
	} `yaml:"game"`
	Schedule struct {
		RitualCron     string `yaml:"ritual_cron"`
		InactivityCron string `yaml:"inactivity_cron"`
		MonthlyCron    string `yaml:"monthly_cron"`
	} `yaml:"schedule"`
	Store struct {
		Driver        string `yaml:"driver"`
		Path          string `yaml:"path"`
		DSN           string `yaml:"dsn"`
		MigrationsDir string `yaml:"migrations_dir"`
	} `yaml:"store"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // ledger audit trail, empty disables it
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Game.UndoDepth = -1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID_P1"); v != "" {
		setChat(cfg, "p1", v)
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID_P2"); v != "" {
		setChat(cfg, "p2", v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Coach.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Coach.Model = v
	}
	if v := os.Getenv("COUPLE_ID"); v != "" {
		cfg.Game.CoupleID = v
	}
	if v := os.Getenv("GAME_SEED"); v != "" {
		cfg.Game.Seed = v
	}
	if v := os.Getenv("INACTIVITY_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Game.InactivityDays = days
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_RITUAL"); v != "" {
		cfg.Schedule.RitualCron = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Coach.Model == "" {
		cfg.Coach.Model = "gemini-2.5-flash"
	}
	if cfg.Coach.TimeoutSeconds == 0 {
		cfg.Coach.TimeoutSeconds = 20
	}
	if cfg.Coach.Recent == 0 {
		cfg.Coach.Recent = 10
	}
	if cfg.Game.CoupleID == "" {
		cfg.Game.CoupleID = "default"
	}
	if cfg.Game.UndoDepth < 0 {
		cfg.Game.UndoDepth = 5
	}
	if cfg.Game.CardSize == 0 {
		cfg.Game.CardSize = 25
	}
	if cfg.Game.InactivityDays == 0 {
		cfg.Game.InactivityDays = 14
	}
	if cfg.Schedule.RitualCron == "" {
		cfg.Schedule.RitualCron = "0 0 19 * * *"
	}
	if cfg.Schedule.InactivityCron == "" {
		cfg.Schedule.InactivityCron = "0 0 10 * * *"
	}
	if cfg.Schedule.MonthlyCron == "" {
		cfg.Schedule.MonthlyCron = "0 0 9 1 * *"
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "file"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Driver {
		case "sqlite":
			cfg.Store.Path = "data/bingo.db"
		default:
			cfg.Store.Path = "data/games"
		}
	}
	if cfg.Store.MigrationsDir == "" {
		cfg.Store.MigrationsDir = "db/migrations"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/ledger.db"
	}

	return cfg, nil
}

func setChat(cfg *Config, user, chatID string) {
	if cfg.Telegram.ChatIDs == nil {
		cfg.Telegram.ChatIDs = map[string]string{}
	}
	cfg.Telegram.ChatIDs[user] = chatID
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" && len(c.Telegram.ChatIDs) == 0 {
		return fmt.Errorf("telegram.chat_id or telegram.chat_ids is required")
	}
	for user := range c.Telegram.ChatIDs {
		if user != "p1" && user != "p2" {
			return fmt.Errorf("telegram.chat_ids: unknown player %q", user)
		}
	}
	switch c.Store.Driver {
	case "file", "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver %q is not one of file, sqlite, postgres", c.Store.Driver)
	}
	if c.Game.CardSize < 1 {
		return fmt.Errorf("game.card_size must be positive")
	}
	if c.Game.InactivityDays < 1 {
		return fmt.Errorf("game.inactivity_days must be positive")
	}
	if c.Coach.TimeoutSeconds < 1 {
		return fmt.Errorf("coach.timeout_seconds must be positive")
	}
	return nil
}

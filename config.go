package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Instrument identifies one upstream security to poll. Loaded once at startup
// and immutable afterwards.
type Instrument struct {
	Symbol     string `json:"symbol"`
	SecurityID string `json:"security_id"`
	Exchange   string `json:"exchange"`
}

// Config is the full process configuration. An optional JSON file provides the
// structural settings; environment variables override everything and carry the
// secrets.
type Config struct {
	PollIntervalSeconds int          `json:"poll_interval_seconds"`
	StrikeWindow        int          `json:"strike_window"`
	StrikeInterval      int          `json:"strike_interval"`
	StatusPort          int          `json:"status_port"`
	LogLevel            string       `json:"log_level"`
	QuoteBaseURL        string       `json:"quote_base_url"`
	Instruments         []Instrument `json:"instruments"`

	QuoteClientID  string `json:"-"`
	QuoteToken     string `json:"-"`
	TelegramToken  string `json:"-"`
	TelegramChatID string `json:"-"`
	DiscordToken   string `json:"-"`
	DiscordChannel string `json:"-"`
	StatusToken    string `json:"-"`
}

// PollInterval returns the cycle interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// defaultInstruments is the fallback instrument set when no config file lists
// any. Security IDs and venue codes can be overridden per instrument from env.
func defaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "NIFTY50", SecurityID: getenvDefault("NIFTY_SECURITY_ID", "13"), Exchange: getenvDefault("NIFTY_EXCHANGE", "IDX_I")},
		{Symbol: "TCS", SecurityID: getenvDefault("TCS_SECURITY_ID", "11536"), Exchange: getenvDefault("TCS_EXCHANGE", "NSE_EQ")},
	}
}

// LoadConfig builds the configuration: defaults, then the JSON file at path
// (if given), then environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		PollIntervalSeconds: 60,
		StrikeWindow:        5,
		StrikeInterval:      50,
		StatusPort:          8099,
		LogLevel:            "info",
		QuoteBaseURL:        "https://api.dhan.co",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if len(cfg.Instruments) == 0 {
		cfg.Instruments = defaultInstruments()
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 60
	}
	if cfg.StrikeWindow <= 0 {
		cfg.StrikeWindow = 5
	}
	if cfg.StrikeInterval <= 0 {
		cfg.StrikeInterval = 50
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := getenvInt("POLL_INTERVAL"); ok {
		cfg.PollIntervalSeconds = v
	}
	if v, ok := getenvInt("STRIKE_WINDOW"); ok {
		cfg.StrikeWindow = v
	}
	if v, ok := getenvInt("STRIKE_INTERVAL"); ok {
		cfg.StrikeInterval = v
	}
	if v, ok := getenvInt("STATUS_PORT"); ok {
		cfg.StatusPort = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DHAN_API_BASE"); v != "" {
		cfg.QuoteBaseURL = v
	}
	if v := os.Getenv("DHAN_CLIENT_ID"); v != "" {
		cfg.QuoteClientID = v
	}
	if v := os.Getenv("DHAN_ACCESS_TOKEN"); v != "" {
		cfg.QuoteToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.TelegramChatID = v
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.DiscordToken = v
	}
	if v := os.Getenv("DISCORD_CHANNEL_ID"); v != "" {
		cfg.DiscordChannel = v
	}
	if v := os.Getenv("STATUS_TOKEN"); v != "" {
		cfg.StatusToken = v
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

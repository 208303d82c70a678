package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource   DataSource   `yaml:"data_source"`
	AlphaVantage AlphaVantage `yaml:"alpha_vantage"`
	IEX          IEX          `yaml:"iex"`
	Cache        Cache        `yaml:"cache"`
	Calendar     Calendar     `yaml:"calendar"`
	Holdings     Holdings     `yaml:"holdings"`
	Funds        []string     `yaml:"funds" validate:"min=1,dive,required"`
	Schedule     Schedule     `yaml:"schedule"`
	Telegram     Telegram     `yaml:"telegram"`
	Proxy        string       `yaml:"proxy" validate:"omitempty,url"`
}

type DataSource struct {
	Mode string `yaml:"mode" validate:"oneof=historical realtime"`
}

type AlphaVantage struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url" validate:"omitempty,url"`
	CallsPerMinute int           `yaml:"calls_per_minute" validate:"gte=1"`
	QuotaCooldown  time.Duration `yaml:"quota_cooldown" validate:"gte=0"`
}

type IEX struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

type Cache struct {
	Dir string `yaml:"dir" validate:"required"`
}

type Calendar struct {
	// Timezone is an IANA zone name; empty means UTC.
	Timezone string `yaml:"timezone"`
}

type Holdings struct {
	Source string                       `yaml:"source" validate:"oneof=static html"`
	Static map[string]map[string]string `yaml:"static"`
	HTML   HTMLHoldings                 `yaml:"html"`
}

type HTMLHoldings struct {
	URLTemplate  string `yaml:"url_template"`
	RowSelector  string `yaml:"row_selector"`
	SymbolColumn int    `yaml:"symbol_column" validate:"gte=0"`
	WeightColumn int    `yaml:"weight_column" validate:"gte=0"`
}

type Schedule struct {
	// ReportCron enables daemon mode when set (six fields, with seconds).
	ReportCron string `yaml:"report_cron"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether Telegram delivery is configured.
func (t Telegram) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. Unknown keys are rejected. Variables from a .env file in the working
// directory are loaded first and never override the real environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("IEX_TOKEN"); v != "" {
		cfg.IEX.Token = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("DATA_MODE"); v != "" {
		cfg.DataSource.Mode = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FUNDS"); v != "" {
		cfg.Funds = splitList(v)
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("AV_CALLS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AlphaVantage.CallsPerMinute = n
		} else {
			log.Printf("[WARN] ignoring AV_CALLS_PER_MINUTE=%q: %v", v, err)
		}
	}
}

func applyDefaults(cfg *Config) {
	cfg.DataSource.Mode = strings.ToLower(strings.TrimSpace(cfg.DataSource.Mode))
	if cfg.DataSource.Mode == "" {
		cfg.DataSource.Mode = "historical"
	}
	if cfg.AlphaVantage.CallsPerMinute == 0 {
		cfg.AlphaVantage.CallsPerMinute = 5
	}
	if cfg.AlphaVantage.QuotaCooldown == 0 {
		cfg.AlphaVantage.QuotaCooldown = 60 * time.Second
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "quotes"
	}
	if cfg.Holdings.Source == "" {
		cfg.Holdings.Source = "static"
	}
	if cfg.Holdings.HTML.RowSelector == "" {
		cfg.Holdings.HTML.RowSelector = "table tbody tr"
	}
	if cfg.Holdings.HTML.SymbolColumn == 0 && cfg.Holdings.HTML.WeightColumn == 0 {
		cfg.Holdings.HTML.WeightColumn = 2
	}
	if len(cfg.Funds) == 0 && len(cfg.Holdings.Static) > 0 {
		for fund := range cfg.Holdings.Static {
			cfg.Funds = append(cfg.Funds, strings.ToUpper(fund))
		}
		sort.Strings(cfg.Funds)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}

// Validate checks field constraints and that the selected mode has its
// credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.DataSource.Mode {
	case "historical":
		if c.AlphaVantage.APIKey == "" {
			return fmt.Errorf("alpha_vantage.api_key (ALPHA_VANTAGE_API_KEY) is required in historical mode")
		}
	case "realtime":
		if c.IEX.Token == "" {
			return fmt.Errorf("iex.token (IEX_TOKEN) is required in realtime mode")
		}
	}
	if c.Holdings.Source == "html" && !strings.Contains(c.Holdings.HTML.URLTemplate, "%s") {
		return fmt.Errorf("holdings.html.url_template must contain %%s for the fund symbol")
	}
	if c.Holdings.Source == "static" {
		for _, fund := range c.Funds {
			if !hasFund(c.Holdings.Static, fund) {
				return fmt.Errorf("holdings.static has no entry for fund %s", fund)
			}
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
			return fmt.Errorf("calendar.timezone: %w", err)
		}
	}
	return nil
}

func hasFund(static map[string]map[string]string, fund string) bool {
	for name := range static {
		if strings.EqualFold(name, fund) {
			return true
		}
	}
	return false
}

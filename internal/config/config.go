package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Timezone string   `yaml:"timezone"`
	Tickers  []string `yaml:"tickers"`
	Windows  struct {
		ShortDays int `yaml:"short_days"`
		LongDays  int `yaml:"long_days"`
	} `yaml:"windows"`
	Bars struct {
		Interval string `yaml:"interval"`
	} `yaml:"bars"`
	Schedule struct {
		AnalyticsCron string `yaml:"analytics_cron"`
		DigestCron    string `yaml:"digest_cron"`
		WeeklyCron    string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	SMTP struct {
		Host                string `yaml:"host"`
		Port                int    `yaml:"port"`
		Username            string `yaml:"username"`
		Password            string `yaml:"password"`
		From                string `yaml:"from"`
		SubjectPrefix       string `yaml:"subject_prefix"`
		WeeklySubjectPrefix string `yaml:"weekly_subject_prefix"`
	} `yaml:"smtp"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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

	// Environment variable overrides
	if v := os.Getenv("TZ_NAME"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		cfg.Tickers = ParseTickers(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("EMAIL_PASS"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("CRON_ANALYTICS"); v != "" {
		cfg.Schedule.AnalyticsCron = v
	}
	if v := os.Getenv("CRON_DIGEST"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		cfg.Schedule.WeeklyCron = v
	}
	if v := os.Getenv("EMAIL_SUBJECT"); v != "" {
		cfg.SMTP.WeeklySubjectPrefix = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Toronto"
	}
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = []string{
			"BCE.TO", "BNS.TO", "CM.TO", "CSH-UN.TO", "ENB.TO", "FIE.TO",
			"POW.TO", "SGR-UN.TO", "SRU-UN.TO", "T.TO", "TD.TO", "FTS.TO",
		}
	}
	if cfg.Windows.ShortDays == 0 {
		cfg.Windows.ShortDays = 30
	}
	if cfg.Windows.LongDays == 0 {
		cfg.Windows.LongDays = 90
	}
	if cfg.Bars.Interval == "" {
		cfg.Bars.Interval = "5m"
	}
	if cfg.Schedule.AnalyticsCron == "" {
		cfg.Schedule.AnalyticsCron = "0 */5 10-16 * * 1-5"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 12,17 * * 1-5"
	}
	if cfg.Schedule.WeeklyCron == "" {
		cfg.Schedule.WeeklyCron = "0 30 11 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocksentry.db"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = "no-reply@stocksentry.local"
	}
	if cfg.SMTP.SubjectPrefix == "" {
		cfg.SMTP.SubjectPrefix = "Tickers can be invested in - "
	}
	if cfg.SMTP.WeeklySubjectPrefix == "" {
		cfg.SMTP.WeeklySubjectPrefix = "Favorable stocks to invest on "
	}

	return cfg, nil
}

// ParseTickers splits a comma or whitespace separated ticker list,
// uppercases entries, and deduplicates preserving order.
func ParseTickers(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.ToUpper(strings.TrimSpace(f))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BarInterval parses the configured intraday bar interval.
func (c *Config) BarInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Bars.Interval)
	if err != nil {
		return 0, fmt.Errorf("parse bar interval %q: %w", c.Bars.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("bar interval must be positive, got %q", c.Bars.Interval)
	}
	return d, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("tickers list is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.BarInterval(); err != nil {
		return err
	}
	if c.Windows.ShortDays <= 0 || c.Windows.LongDays <= 0 {
		return fmt.Errorf("window sizes must be positive")
	}
	if c.Windows.ShortDays >= c.Windows.LongDays {
		return fmt.Errorf("windows.short_days must be smaller than windows.long_days")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timezone != "America/Toronto" {
		t.Errorf("default timezone: %s", cfg.Timezone)
	}
	if len(cfg.Tickers) != 12 {
		t.Errorf("expected 12 default tickers, got %d", len(cfg.Tickers))
	}
	if cfg.Windows.ShortDays != 30 || cfg.Windows.LongDays != 90 {
		t.Errorf("default windows: %+v", cfg.Windows)
	}
	if cfg.Bars.Interval != "5m" {
		t.Errorf("default interval: %s", cfg.Bars.Interval)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("default smtp port: %d", cfg.SMTP.Port)
	}
	if cfg.Schedule.WeeklyCron != "0 30 11 * * 1-5" {
		t.Errorf("default weekly cron: %s", cfg.Schedule.WeeklyCron)
	}
	if cfg.SMTP.WeeklySubjectPrefix != "Favorable stocks to invest on " {
		t.Errorf("default weekly subject prefix: %q", cfg.SMTP.WeeklySubjectPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
timezone: America/New_York
tickers: [AAPL, MSFT]
windows:
  short_days: 14
  long_days: 60
database:
  sqlite_path: /tmp/test.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timezone != "America/New_York" {
		t.Errorf("timezone: %s", cfg.Timezone)
	}
	if !reflect.DeepEqual(cfg.Tickers, []string{"AAPL", "MSFT"}) {
		t.Errorf("tickers: %v", cfg.Tickers)
	}
	if cfg.Windows.ShortDays != 14 || cfg.Windows.LongDays != 60 {
		t.Errorf("windows: %+v", cfg.Windows)
	}
	if cfg.Database.SQLitePath != "/tmp/test.db" {
		t.Errorf("sqlite path: %s", cfg.Database.SQLitePath)
	}
	// Unset fields still get defaults.
	if cfg.Bars.Interval != "5m" {
		t.Errorf("interval default not applied: %s", cfg.Bars.Interval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TZ_NAME", "UTC")
	t.Setenv("TICKERS", "bce.to, td.to")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("EMAIL_FROM", "alerts@example.com")
	t.Setenv("CRON_WEEKLY", "0 0 12 * * 1")
	t.Setenv("EMAIL_SUBJECT", "Weekly picks for ")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("timezone: %s", cfg.Timezone)
	}
	if !reflect.DeepEqual(cfg.Tickers, []string{"BCE.TO", "TD.TO"}) {
		t.Errorf("tickers: %v", cfg.Tickers)
	}
	if cfg.SMTP.Port != 465 {
		t.Errorf("smtp port: %d", cfg.SMTP.Port)
	}
	if cfg.SMTP.From != "alerts@example.com" {
		t.Errorf("from: %s", cfg.SMTP.From)
	}
	if cfg.Schedule.WeeklyCron != "0 0 12 * * 1" {
		t.Errorf("weekly cron: %s", cfg.Schedule.WeeklyCron)
	}
	if cfg.SMTP.WeeklySubjectPrefix != "Weekly picks for " {
		t.Errorf("weekly subject prefix: %q", cfg.SMTP.WeeklySubjectPrefix)
	}
}

func TestParseTickers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"BCE.TO,TD.TO", []string{"BCE.TO", "TD.TO"}},
		{"bce.to td.to", []string{"BCE.TO", "TD.TO"}},
		{"BCE.TO, BCE.TO ,td.to", []string{"BCE.TO", "TD.TO"}},
		{" , ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := ParseTickers(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTickers(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cfg := base()
	cfg.Tickers = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty tickers")
	}

	cfg = base()
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad timezone")
	}

	cfg = base()
	cfg.Bars.Interval = "banana"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad interval")
	}

	cfg = base()
	cfg.Windows.ShortDays = 90
	cfg.Windows.LongDays = 30
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for inverted windows")
	}
}

func TestBarInterval(t *testing.T) {
	cfg := &Config{}
	cfg.Bars.Interval = "5m"
	d, err := cfg.BarInterval()
	if err != nil {
		t.Fatal(err)
	}
	if d != 5*time.Minute {
		t.Errorf("interval: %v", d)
	}

	cfg.Bars.Interval = "-1m"
	if _, err := cfg.BarInterval(); err == nil {
		t.Error("expected error for negative interval")
	}
}

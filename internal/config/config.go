package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"regatta/internal/availability"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		MinStayDays      int `yaml:"min_stay_days"`
		SeasonFirstMonth int `yaml:"season_first_month"`
		SeasonLastMonth  int `yaml:"season_last_month"`
	} `yaml:"booking"`

	Reminders struct {
		Enabled              bool `yaml:"enabled"`
		CheckIntervalMinutes int  `yaml:"check_interval_minutes"`
		DaysBefore           int  `yaml:"days_before"`
	} `yaml:"reminders"`

	Audit struct {
		Enabled       bool   `yaml:"enabled"`
		RetentionDays int    `yaml:"retention_days"`
		ReportDir     string `yaml:"report_dir"`
		ExportOnStart bool   `yaml:"export_on_start"`
	} `yaml:"audit"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/regatta.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MinStay returns the minimum charter duration in whole days.
func (c *Config) MinStay() int {
	if c.Booking.MinStayDays <= 0 {
		return 3
	}
	return c.Booking.MinStayDays
}

// Season returns the configured season window, defaulting to May..November.
func (c *Config) Season() availability.SeasonWindow {
	if c.Booking.SeasonFirstMonth < 1 || c.Booking.SeasonFirstMonth > 12 ||
		c.Booking.SeasonLastMonth < 1 || c.Booking.SeasonLastMonth > 12 {
		return availability.DefaultSeason
	}
	return availability.SeasonWindow{
		First: time.Month(c.Booking.SeasonFirstMonth),
		Last:  time.Month(c.Booking.SeasonLastMonth),
	}
}

// CacheTTL returns the availability cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// ReminderCheckInterval returns how often the reminder loop scans.
func (c *Config) ReminderCheckInterval() time.Duration {
	if c.Reminders.CheckIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Reminders.CheckIntervalMinutes) * time.Minute
}

// BackupInterval returns how often backups run.
func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

// BackupRetention returns how long backups are kept.
func (c *Config) BackupRetention() time.Duration {
	if c.Backup.RetentionDays <= 0 {
		return 14 * 24 * time.Hour
	}
	return time.Duration(c.Backup.RetentionDays) * 24 * time.Hour
}

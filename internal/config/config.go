package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/brandbeam/brandbeam/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    logger.Config   `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Reports   ReportsConfig   `yaml:"reports"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	// TOTP secret protecting the /admin endpoints
	AdminTOTPSecret string `yaml:"admin_totp_secret"`
}

type SchedulerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	PublishInterval  string `yaml:"publish_interval"`
	SnapshotInterval string `yaml:"snapshot_interval"`
	TaskInterval     string `yaml:"task_interval"`
}

type ReportsConfig struct {
	GA4SummaryURL  string `yaml:"ga4_summary_url"`
	EmailEndpoint  string `yaml:"email_endpoint"`
	LearningURL    string `yaml:"learning_url"`
	ShareTTL       string `yaml:"share_ttl"`
	CacheTTL       string `yaml:"cache_ttl"`
	ShareBaseURL   string `yaml:"share_base_url"`
	RequestTimeout string `yaml:"request_timeout"`
}

type CrawlerConfig struct {
	MaxPages       int    `yaml:"max_pages"`
	MaxDepth       int    `yaml:"max_depth"`
	RequestTimeout string `yaml:"request_timeout"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5520
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Scheduler.PublishInterval == "" {
		cfg.Scheduler.PublishInterval = "1m"
	}
	if cfg.Scheduler.SnapshotInterval == "" {
		cfg.Scheduler.SnapshotInterval = "1h"
	}
	if cfg.Scheduler.TaskInterval == "" {
		cfg.Scheduler.TaskInterval = "30s"
	}
	if cfg.Reports.ShareTTL == "" {
		cfg.Reports.ShareTTL = "168h"
	}
	if cfg.Reports.CacheTTL == "" {
		cfg.Reports.CacheTTL = "5m"
	}
	if cfg.Reports.RequestTimeout == "" {
		cfg.Reports.RequestTimeout = "30s"
	}
	if cfg.Crawler.MaxPages == 0 {
		cfg.Crawler.MaxPages = 20
	}
	if cfg.Crawler.MaxDepth == 0 {
		cfg.Crawler.MaxDepth = 3
	}
	if cfg.Crawler.RequestTimeout == "" {
		cfg.Crawler.RequestTimeout = "15s"
	}

	return cfg, nil
}

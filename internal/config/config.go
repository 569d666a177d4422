package config

import (
	"errors"
	"fmt"
	"os"

	"webstudio/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Storage    StorageConfig    `yaml:"storage"`
	Backup     BackupConfig     `yaml:"backup"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Exports    ExportConfig     `yaml:"exports"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Checkout   CheckoutConfig   `yaml:"checkout"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	LogLevel          string `yaml:"log_level"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key   string `yaml:"key"`
	Extra string `yaml:"extra"`
	Name  string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled"`
	BotToken string  `yaml:"bot_token"`
	Managers []int64 `yaml:"managers"`
}

type GoogleConfig struct {
	Enabled               bool   `yaml:"enabled"`
	GoogleCredentialsFile string `yaml:"credentials_file"`
	OrdersSpreadSheetID   string `yaml:"orders_spreadsheet_id"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type PricingConfig struct {
	Addons     []models.FeatureAddon `yaml:"addons"`
	BasePrices []models.BasePrice    `yaml:"base_prices"`
}

type CheckoutConfig struct {
	SessionTTL           int `yaml:"session_ttl"`
	RateLimitSubmissions int `yaml:"rate_limit_submissions"`
	RateLimitWindow      int `yaml:"rate_limit_window"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен: в проде переменные приходят из окружения
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return errors.New("storage data dir is required")
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required when telegram notifications are enabled")
	}

	if c.Google.Enabled {
		if c.Google.GoogleCredentialsFile == "" {
			return errors.New("google credentials file is required when sheets sync is enabled")
		}
		if c.Google.OrdersSpreadSheetID == "" {
			return errors.New("orders spreadsheet id is required when sheets sync is enabled")
		}
	}

	return ValidatePricing(c.Pricing)
}

func ValidatePricing(cfg PricingConfig) error {
	labels := make(map[string]bool)
	for _, addon := range cfg.Addons {
		if addon.Label == "" {
			return errors.New("pricing add-on has empty label")
		}
		if labels[addon.Label] {
			return fmt.Errorf("duplicate pricing add-on label: %s", addon.Label)
		}
		labels[addon.Label] = true
	}

	services := make(map[int]bool)
	for _, base := range cfg.BasePrices {
		if base.ServiceID == 0 {
			return fmt.Errorf("base price '%s' has invalid service id 0", base.Name)
		}
		if services[base.ServiceID] {
			return fmt.Errorf("duplicate base price for service id: %d", base.ServiceID)
		}
		services[base.ServiceID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	// Checkout defaults
	if c.Checkout.SessionTTL == 0 {
		c.Checkout.SessionTTL = models.DefaultSessionTTL
	}
	if c.Checkout.RateLimitSubmissions == 0 {
		c.Checkout.RateLimitSubmissions = models.RateLimitSubmissions
	}
	if c.Checkout.RateLimitWindow == 0 {
		c.Checkout.RateLimitWindow = models.RateLimitWindow
	}
}

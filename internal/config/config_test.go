package config

import (
	"os"
	"path/filepath"
	"testing"

	"webstudio/internal/models"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
storage:
  data_dir: "data"
api:
  http:
    port: 3000
pricing:
  addons:
    - label: "SEO"
      price: 20000
  base_prices:
    - service_id: 1
      name: "Лендинг"
      price: 50000
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	// Mock .env file
	if err := os.WriteFile(".env", []byte(""), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	defer os.Remove(".env")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.DataDir != "data" {
		t.Errorf("expected data dir data, got %s", cfg.Storage.DataDir)
	}
	if cfg.API.HTTP.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.API.HTTP.Port)
	}
	if len(cfg.Pricing.Addons) != 1 || cfg.Pricing.Addons[0].Label != "SEO" {
		t.Errorf("expected 1 add-on with label SEO")
	}
	if len(cfg.Pricing.BasePrices) != 1 || cfg.Pricing.BasePrices[0].Price != 50000 {
		t.Errorf("expected 1 base price of 50000")
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("WEBSTUDIO_DATA_DIR", "/var/lib/webstudio")

	yamlContent := `
storage:
  data_dir: "${WEBSTUDIO_DATA_DIR}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.DataDir != "/var/lib/webstudio" {
		t.Errorf("expected expanded data dir, got %s", cfg.Storage.DataDir)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Storage: StorageConfig{DataDir: "data"},
			},
			wantErr: false,
		},
		{
			name:    "missing data dir",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "telegram enabled without token",
			cfg: Config{
				Storage:  StorageConfig{DataDir: "data"},
				Telegram: TelegramConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "google enabled without spreadsheet",
			cfg: Config{
				Storage: StorageConfig{DataDir: "data"},
				Google:  GoogleConfig{Enabled: true, GoogleCredentialsFile: "creds.json"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Checkout.SessionTTL != models.DefaultSessionTTL {
		t.Errorf("expected default session ttl %d, got %d", models.DefaultSessionTTL, cfg.Checkout.SessionTTL)
	}
	if cfg.Checkout.RateLimitSubmissions != models.RateLimitSubmissions {
		t.Errorf("expected default rate limit submissions %d, got %d", models.RateLimitSubmissions, cfg.Checkout.RateLimitSubmissions)
	}
}

func TestValidatePricing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PricingConfig
		wantErr bool
	}{
		{
			name: "valid pricing",
			cfg: PricingConfig{
				Addons:     []models.FeatureAddon{{Label: "SEO"}, {Label: "Дизайн"}},
				BasePrices: []models.BasePrice{{ServiceID: 1}, {ServiceID: 2}},
			},
			wantErr: false,
		},
		{
			name: "duplicate add-on label",
			cfg: PricingConfig{
				Addons: []models.FeatureAddon{{Label: "SEO"}, {Label: "SEO"}},
			},
			wantErr: true,
		},
		{
			name: "empty add-on label",
			cfg: PricingConfig{
				Addons: []models.FeatureAddon{{Label: ""}},
			},
			wantErr: true,
		},
		{
			name: "base price with service id 0",
			cfg: PricingConfig{
				BasePrices: []models.BasePrice{{ServiceID: 0, Name: "X"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate base price",
			cfg: PricingConfig{
				BasePrices: []models.BasePrice{{ServiceID: 1}, {ServiceID: 1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePricing(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePricing() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

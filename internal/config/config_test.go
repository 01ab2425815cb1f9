package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.LLM = LLMConfig{
		Providers: map[string]ProviderConfig{
			"openai": {
				APIKey:  "test-key",
				BaseURL: "https://api.example.com/v1/",
				Budget: BudgetConfig{
					DailyTokenLimit: 1000000,
					Action:          "invalid_action",
				},
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `llm.providers.openai.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.LLM = LLMConfig{
				Providers: map[string]ProviderConfig{
					"openai": {
						APIKey: "test-key",
						Budget: BudgetConfig{Action: action},
					},
				},
			}

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memcached"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_AdventurousnessOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Recommend.DefaultAdventurousness = 11

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for adventurousness above 10")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.MaxUploadMB != 10 {
		t.Errorf("expected MaxUploadMB=10, got %d", cfg.HTTP.MaxUploadMB)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.LLM.Vision.Model != "gpt-4o-mini" {
		t.Errorf("expected vision model gpt-4o-mini, got %q", cfg.LLM.Vision.Model)
	}
	if cfg.LLM.Recommender.Model != "gpt-4.1-mini" {
		t.Errorf("expected recommender model gpt-4.1-mini, got %q", cfg.LLM.Recommender.Model)
	}
	if cfg.LLM.Breaker.FailureThreshold != 5 {
		t.Errorf("expected FailureThreshold=5, got %d", cfg.LLM.Breaker.FailureThreshold)
	}
	if cfg.Recommend.TopN != 3 {
		t.Errorf("expected TopN=3, got %d", cfg.Recommend.TopN)
	}
	if cfg.Recommend.BatchSize != 10 {
		t.Errorf("expected BatchSize=10, got %d", cfg.Recommend.BatchSize)
	}
	if cfg.Recommend.DefaultAdventurousness != 3 {
		t.Errorf("expected DefaultAdventurousness=3, got %d", cfg.Recommend.DefaultAdventurousness)
	}
	if cfg.Storage.KeyPrefix != "sodivino:" {
		t.Errorf("expected KeyPrefix='sodivino:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 5, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{Driver: "valkey", ReadinessTimeout: 15},
		Recommend: RecommendConfig{TopN: 5, BatchSize: 20},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("expected ReadTimeoutSec=5, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Recommend.TopN != 5 {
		t.Errorf("expected TopN=5, got %d", cfg.Recommend.TopN)
	}
	if cfg.Recommend.BatchSize != 20 {
		t.Errorf("expected BatchSize=20, got %d", cfg.Recommend.BatchSize)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SODIVINO_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("a: ${SODIVINO_TEST_KEY}\nb: ${SODIVINO_TEST_MISSING:-fallback}\nc: ${SODIVINO_TEST_MISSING}")))
	want := "a: secret\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yml := `
http:
  port: ${SODIVINO_TEST_PORT:-9090}
database:
  addrs: ["localhost:6379"]
recommend:
  top_n: 4
catalogue:
  - id: house_red
    label: House Red
    color: red
    budget: 35
    dislikes: [oak]
    adventurousness: 6
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Recommend.TopN != 4 {
		t.Errorf("expected TopN=4, got %d", cfg.Recommend.TopN)
	}
	if cfg.Recommend.BatchSize != 10 {
		t.Errorf("expected default BatchSize=10, got %d", cfg.Recommend.BatchSize)
	}
	if len(cfg.Catalogue) != 1 {
		t.Fatalf("expected 1 catalogue profile, got %d", len(cfg.Catalogue))
	}
	p := cfg.Catalogue[0]
	if p.ID != "house_red" || p.Color != "red" || p.Budget != 35 || len(p.Dislikes) != 1 {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.Adventurousness == nil || *p.Adventurousness != 6 {
		t.Errorf("expected adventurousness 6, got %v", p.Adventurousness)
	}
}

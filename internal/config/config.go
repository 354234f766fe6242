package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderHTTP = "http"
	ProviderSDK  = "sdk"

	CredentialBackendStore   = "store"
	CredentialBackendKeyring = "keyring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql, memory
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	Provider     string        `yaml:"provider"` // http, sdk
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"` // seeds the credential store when it is empty
	RefinerModel string        `yaml:"refiner_model"`
	PlannerModel string        `yaml:"planner_model"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"` // 0 disables the client timeout
}

type StorageConfig struct {
	CredentialBackend string `yaml:"credential_backend"` // store, keyring
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Dir    string `yaml:"dir"`
	Stderr bool   `yaml:"stderr"`
}

var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// GetConfig loads the configuration once from TRIP_REFINER_CONFIG (default
// config.yaml), a .env file if present, and environment overrides.
func GetConfig() (*Config, error) {
	cfgOnce.Do(func() {
		_ = godotenv.Load()
		path := os.Getenv("TRIP_REFINER_CONFIG")
		if path == "" {
			path = "config.yaml"
		}
		cfg, cfgErr = Load(path)
	})
	return cfg, cfgErr
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/trip-refiner.db",
		},
		LLM: LLMConfig{
			Provider:     ProviderHTTP,
			BaseURL:      "https://generativelanguage.googleapis.com/v1beta/models",
			RefinerModel: "gemini-1.5-flash-latest",
			PlannerModel: "gemini-1.5-pro-latest",
			Temperature:  0.7,
		},
		Storage: StorageConfig{
			CredentialBackend: CredentialBackendStore,
		},
		Log: LogConfig{
			Level:  "info",
			Stderr: true,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	applyEnv(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func applyEnv(c *Config) {
	if v := env("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := env("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := env("DATABASE_TYPE"); v != "" {
		c.Database.Type = v
	}
	if v := env("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := env("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := env("GEMINI_API_URL"); v != "" {
		c.LLM.BaseURL = strings.TrimRight(v, "/") + "/models"
	}
	if v := env("GOOGLE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := env("LLM_REFINER_MODEL"); v != "" {
		c.LLM.RefinerModel = v
	}
	if v := env("LLM_PLANNER_MODEL"); v != "" {
		c.LLM.PlannerModel = v
	}
	if v := env("LLM_HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.LLM.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := env("CREDENTIAL_BACKEND"); v != "" {
		c.Storage.CredentialBackend = strings.ToLower(v)
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := env("LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderHTTP, ProviderSDK:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Database.Type {
	case "sqlite", "mysql", "memory":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	switch c.Storage.CredentialBackend {
	case CredentialBackendStore, CredentialBackendKeyring:
	default:
		return fmt.Errorf("unknown credential backend %q", c.Storage.CredentialBackend)
	}
	if c.LLM.RefinerModel == "" || c.LLM.PlannerModel == "" {
		return errors.New("llm refiner_model and planner_model are required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature %.2f out of range [0, 2]", c.LLM.Temperature)
	}
	return nil
}

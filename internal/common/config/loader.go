// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, overlays config.<APP_ENVIRONMENT>.yaml,
// then applies .env and process environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName("config." + environment())
	_ = v.MergeInConfig() // overlay is optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Conventional names that do not follow the section_key scheme.
	_ = v.BindEnv("inference.api_key", "NVIDIA_API_KEY", "INFERENCE_API_KEY")
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("server.host", "HOST", "SERVER_HOST")
	_ = v.BindEnv("redis.address", "REDIS_ADDRESS", "REDIS_ADDR")
	_ = v.BindEnv("app.environment", "APP_ENVIRONMENT")
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func environment() string {
	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "greenguide")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30000)
	v.SetDefault("server.write_timeout", 200000)
	v.SetDefault("server.shutdown_timeout", 15000)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("inference.endpoint", "https://integrate.api.nvidia.com/v1/chat/completions")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.credential_prefix", "nvapi-")
	v.SetDefault("inference.timeout", 60000)
	v.SetDefault("inference.vision.model", "nvidia/nemotron-nano-12b-v2-vl")
	v.SetDefault("inference.vision.max_tokens", 200)
	v.SetDefault("inference.vision.temperature", 0.2)
	v.SetDefault("inference.reasoning.model", "nvidia/llama-3.3-nemotron-super-49b-v1")
	v.SetDefault("inference.reasoning.max_tokens", 300)
	v.SetDefault("inference.reasoning.temperature", 0.1)
	v.SetDefault("inference.educator.model", "nvidia/nemotron-mini-4b-instruct")
	v.SetDefault("inference.educator.max_tokens", 200)
	v.SetDefault("inference.educator.temperature", 0.7)

	v.SetDefault("image.max_dimension", 1024)
	v.SetDefault("image.jpeg_quality", 85)
	v.SetDefault("image.max_pixels", 50_000_000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", 60000)
	v.SetDefault("rate_limit.key_prefix", "greenguide:ratelimit")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// loadEnvFile loads the first .env found walking up toward the project root.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// applyDefaults fixes up values that viper defaults cannot express.
func applyDefaults(cfg *Config) {
	cfg.Inference.APIKey = strings.TrimSpace(cfg.Inference.APIKey)
	cfg.Inference.Endpoint = strings.TrimSpace(cfg.Inference.Endpoint)

	if cfg.App.Environment == "" {
		cfg.App.Environment = environment()
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = 60000
	}
	if cfg.Logging.Format == "text" {
		cfg.Logging.Format = "console"
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

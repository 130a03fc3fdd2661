// internal/common/config/config.go
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Inference InferenceConfig `mapstructure:"inference"`
	Image     ImageConfig     `mapstructure:"image"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds listener settings. X-Forwarded-For is honoured only when
// the peer matches TrustedProxies (IPs or CIDRs).
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64    `mapstructure:"max_upload_bytes" validate:"gt=0"`
	TrustedProxies  []string `mapstructure:"trusted_proxies" validate:"dive,cidr|ip"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// InferenceConfig describes the chat-completions endpoint and the three stage models.
type InferenceConfig struct {
	Endpoint         string      `mapstructure:"endpoint" validate:"required,url"`
	APIKey           string      `mapstructure:"api_key"`
	CredentialPrefix string      `mapstructure:"credential_prefix"`
	Timeout          int         `mapstructure:"timeout" validate:"gt=0"` // milliseconds
	Vision           StageConfig `mapstructure:"vision"`
	Reasoning        StageConfig `mapstructure:"reasoning"`
	Educator         StageConfig `mapstructure:"educator"`
}

type StageConfig struct {
	Model       string  `mapstructure:"model" validate:"required"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// CredentialConfigured reports whether the API key looks like a real credential.
func (c InferenceConfig) CredentialConfigured() bool {
	if c.APIKey == "" {
		return false
	}
	return strings.HasPrefix(c.APIKey, c.CredentialPrefix)
}

// ImageConfig controls upload pre-processing.
type ImageConfig struct {
	MaxDimension int `mapstructure:"max_dimension" validate:"gt=0"`
	JPEGQuality  int `mapstructure:"jpeg_quality" validate:"min=1,max=100"`
	MaxPixels    int `mapstructure:"max_pixels" validate:"gt=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig configures the fixed-window limiter on /classify.
// The limiter is disabled when Enabled is false or Redis has no address.
type RateLimitConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Requests  int    `mapstructure:"requests" validate:"gte=0"`
	Window    int    `mapstructure:"window"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c *Config) RateLimitActive() bool {
	return c.RateLimit.Enabled && c.RateLimit.Requests > 0 && c.Redis.Address != ""
}

func (c *Config) String() string {
	return fmt.Sprintf("app=%s version=%s env=%s addr=%s endpoint=%s credential=%t",
		c.App.Name, c.App.Version, c.App.Environment, c.Server.Addr(),
		c.Inference.Endpoint, c.Inference.CredentialConfigured())
}

// internal/workers/classification/reason-category/config.go
package reasoncategory

import "time"

type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "nvidia/llama-3.3-nemotron-super-49b-v1",
		MaxTokens:   300,
		Temperature: 0.1,
	}
}

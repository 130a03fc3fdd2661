// internal/workers/classification/explain-impact/config.go
package explainimpact

import "time"

type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "nvidia/nemotron-mini-4b-instruct",
		MaxTokens:   200,
		Temperature: 0.7,
	}
}

// internal/workers/classification/identify-object/config.go
package identifyobject

import "time"

type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout overrides the inference client default when non-zero.
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "nvidia/nemotron-nano-12b-v2-vl",
		MaxTokens:   200,
		Temperature: 0.2,
	}
}

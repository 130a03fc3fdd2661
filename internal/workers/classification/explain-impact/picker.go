// internal/workers/classification/explain-impact/picker.go
package explainimpact

import (
	"math/rand/v2"
	"sync"
	"time"

	"greenguide/internal/models"
)

// MetricPicker chooses the impact metric for one classification.
type MetricPicker interface {
	Pick() models.ImpactMetric
}

// RandomPicker picks uniformly over all impact metrics. Safe for concurrent use.
type RandomPicker struct {
	mu      sync.Mutex
	rng     *rand.Rand
	metrics []models.ImpactMetric
}

// NewRandomPicker uses rng, or a time-seeded PCG source when rng is nil.
func NewRandomPicker(rng *rand.Rand) *RandomPicker {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &RandomPicker{
		rng:     rng,
		metrics: models.AllImpactMetrics(),
	}
}

func (p *RandomPicker) Pick() models.ImpactMetric {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics[p.rng.IntN(len(p.metrics))]
}

// FixedPicker always returns the same metric.
type FixedPicker models.ImpactMetric

func (p FixedPicker) Pick() models.ImpactMetric { return models.ImpactMetric(p) }

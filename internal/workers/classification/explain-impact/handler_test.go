// internal/workers/classification/explain-impact/handler_test.go
package explainimpact

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"greenguide/internal/common/errors"
	"greenguide/internal/common/logger"
	"greenguide/internal/inference"
	"greenguide/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, req inference.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func testInput() *Input {
	return &Input{ItemName: "plastic water bottle", Category: models.CategoryRecyclable}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	invoker := new(MockInvoker)
	invoker.On("Invoke", mock.Anything, mock.Anything).
		Return("  Recycling this bottle saves about 0.08 kWh, enough to charge a phone 6 times.  \n", nil)

	handler := NewHandler(DefaultConfig(), invoker, FixedPicker(models.MetricEnergySavings), logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, models.MetricEnergySavings, output.Outcome.Metric)
	assert.Equal(t, "Recycling this bottle saves about 0.08 kWh, enough to charge a phone 6 times.", output.Outcome.Feedback)

	req := invoker.Calls[0].Arguments.Get(1).(inference.Request)
	assert.Equal(t, "nvidia/nemotron-mini-4b-instruct", req.Model)
	assert.Equal(t, 200, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "relatable comparisons")
	assert.Contains(t, req.Messages[0].Content, "kilowatt-hours")
	assert.Equal(t, "Explain the energy savings of disposing of a plastic water bottle as recyclable.", req.Messages[1].Content)
}

func TestHandler_Execute_FeedbackKeptVerbatim(t *testing.T) {
	answer := "```\nComposting one banana peel avoids about 25 g of methane-equivalent CO2.\n```"
	invoker := new(MockInvoker)
	invoker.On("Invoke", mock.Anything, mock.Anything).Return("\n"+answer+"  ", nil)

	handler := NewHandler(DefaultConfig(), invoker, FixedPicker(models.MetricCO2Savings), logger.NewNoOpLogger())
	output, err := handler.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, answer, output.Outcome.Feedback)
}

func TestHandler_Execute_EmptyFeedbackFallsBack(t *testing.T) {
	for _, metric := range models.AllImpactMetrics() {
		t.Run(string(metric), func(t *testing.T) {
			invoker := new(MockInvoker)
			invoker.On("Invoke", mock.Anything, mock.Anything).Return("   \n ", nil)

			handler := NewHandler(DefaultConfig(), invoker, FixedPicker(metric), logger.NewNoOpLogger())
			output, err := handler.Execute(context.Background(), testInput())

			require.NoError(t, err)
			assert.Equal(t, metric, output.Outcome.Metric)
			assert.Equal(t, framings[metric].Fallback, output.Outcome.Feedback)
			assert.NotEmpty(t, output.Outcome.Feedback)
		})
	}
}

func TestHandler_FramingsDistinct(t *testing.T) {
	seen := make(map[string]models.ImpactMetric)
	for _, metric := range models.AllImpactMetrics() {
		f, ok := framings[metric]
		require.True(t, ok, "no framing for %s", metric)
		if other, dup := seen[f.Focus]; dup {
			t.Errorf("%s and %s share a focus", metric, other)
		}
		seen[f.Focus] = metric
	}
}

// ==========================
// Picker Tests
// ==========================

func TestRandomPicker_DeterministicWithSeed(t *testing.T) {
	a := NewRandomPicker(rand.New(rand.NewPCG(7, 11)))
	b := NewRandomPicker(rand.New(rand.NewPCG(7, 11)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(), b.Pick())
	}
}

func TestRandomPicker_CoversAllMetrics(t *testing.T) {
	picker := NewRandomPicker(rand.New(rand.NewPCG(1, 2)))

	seen := make(map[models.ImpactMetric]bool)
	for i := 0; i < 600; i++ {
		seen[picker.Pick()] = true
	}
	assert.Len(t, seen, len(models.AllImpactMetrics()))
}

func TestRandomPicker_ConcurrentUse(t *testing.T) {
	picker := NewRandomPicker(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Contains(t, models.AllImpactMetrics(), picker.Pick())
			}
		}()
	}
	wg.Wait()
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_PropagatesInferenceError(t *testing.T) {
	timeout := errors.NewInferenceTimeoutError("educator", 0)
	invoker := new(MockInvoker)
	invoker.On("Invoke", mock.Anything, mock.Anything).Return("", timeout)

	handler := NewHandler(DefaultConfig(), invoker, FixedPicker(models.MetricCO2Savings), logger.NewNoOpLogger())
	output, err := handler.Execute(context.Background(), testInput())

	assert.Nil(t, output)
	assert.Same(t, timeout, err)
}

func TestHandler_Execute_MissingItemName(t *testing.T) {
	invoker := new(MockInvoker)
	handler := NewHandler(DefaultConfig(), invoker, nil, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), &Input{Category: models.CategoryLandfill})
	assert.ErrorIs(t, err, ErrMissingItemName)
	invoker.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"time"

	"greenguide/internal/common/logger"
	"greenguide/internal/common/metrics"
	"greenguide/internal/common/observability"
	"greenguide/internal/common/requestid"
	"greenguide/internal/models"
	explainimpact "greenguide/internal/workers/classification/explain-impact"
	identifyobject "greenguide/internal/workers/classification/identify-object"
	reasoncategory "greenguide/internal/workers/classification/reason-category"

	"go.opentelemetry.io/otel/attribute"
)

const (
	stageVision    = "vision"
	stageReasoning = "reasoning"
	stageEducator  = "educator"
)

var ErrMissingImage = errors.New("IMAGE_MISSING")

type VisionStage interface {
	Execute(ctx context.Context, input *identifyobject.Input) (*identifyobject.Output, error)
}

type ReasoningStage interface {
	Execute(ctx context.Context, input *reasoncategory.Input) (*reasoncategory.Output, error)
}

type EducatorStage interface {
	Execute(ctx context.Context, input *explainimpact.Input) (*explainimpact.Output, error)
}

// Pipeline chains identify, reason and explain for one image. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	vision    VisionStage
	reasoning ReasoningStage
	educator  EducatorStage
	obs       *observability.Observability
	logger    logger.Logger
}

func New(vision VisionStage, reasoning ReasoningStage, educator EducatorStage, obs *observability.Observability, log logger.Logger) *Pipeline {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Pipeline{
		vision:    vision,
		reasoning: reasoning,
		educator:  educator,
		obs:       obs,
		logger:    log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Classify runs the stages in order. A rejected photo stops after the vision
// call. Any stage error is returned unchanged and no partial result is built.
func (p *Pipeline) Classify(ctx context.Context, image *models.ImagePayload) (result *models.ClassificationResult, err error) {
	if image == nil {
		return nil, ErrMissingImage
	}

	start := time.Now()
	id := requestid.FromContext(ctx)
	log := p.logger.With(map[string]interface{}{"requestId": id})

	ctx, span := p.obs.StartSpan(ctx, "pipeline.classify",
		attribute.String("request.id", id),
		attribute.Int("image.bytes", len(image.Data)),
	)
	metrics.ClassificationsActive.Inc()

	state := StateReceived
	defer func() {
		metrics.ClassificationsActive.Dec()
		outcome := outcomeOf(result, err)
		metrics.Classifications.WithLabelValues(outcome).Inc()
		p.obs.RecordClassification(ctx, outcome, time.Since(start))
		span.SetAttributes(attribute.String("classification.outcome", outcome))
		observability.EndSpan(span, err)

		if err != nil {
			log.Error("Classification failed", map[string]interface{}{
				"state":      string(state),
				"error":      err.Error(),
				"durationMs": time.Since(start).Milliseconds(),
			})
		}
	}()

	p.enter(log, &state, StateReceived, map[string]interface{}{"imageBytes": len(image.Data)})

	p.enter(log, &state, StateIdentifying, nil)
	vision, err := runStage(ctx, p, stageVision, func(ctx context.Context) (*identifyobject.Output, error) {
		return p.vision.Execute(ctx, &identifyobject.Input{Image: image})
	})
	if err != nil {
		return nil, err
	}

	if vision.Outcome.IsRejected() {
		reason := vision.Outcome.Reason
		p.enter(log, &state, StateRejected, map[string]interface{}{
			"rejectionReason": string(reason),
			"confidence":      vision.Outcome.Confidence,
			"durationMs":      time.Since(start).Milliseconds(),
		})
		return &models.ClassificationResult{
			Rejected: &models.RejectedResult{
				RejectionReason: reason,
				Message:         RejectionMessage(reason),
				Confidence:      vision.Outcome.Confidence,
			},
		}, nil
	}

	itemName := vision.Outcome.ItemName
	p.enter(log, &state, StateIdentified, map[string]interface{}{
		"itemName":   itemName,
		"confidence": vision.Outcome.Confidence,
		"degraded":   vision.Outcome.Degraded,
	})

	p.enter(log, &state, StateReasoning, nil)
	reasoning, err := runStage(ctx, p, stageReasoning, func(ctx context.Context) (*reasoncategory.Output, error) {
		return p.reasoning.Execute(ctx, &reasoncategory.Input{ItemName: itemName})
	})
	if err != nil {
		return nil, err
	}
	category := reasoning.Outcome.Category

	p.enter(log, &state, StateExplaining, map[string]interface{}{"category": string(category)})
	educator, err := runStage(ctx, p, stageEducator, func(ctx context.Context) (*explainimpact.Output, error) {
		return p.educator.Execute(ctx, &explainimpact.Input{ItemName: itemName, Category: category})
	})
	if err != nil {
		return nil, err
	}

	confidence := Aggregate(vision.Outcome.Confidence, reasoning.Outcome.Confidence)

	p.enter(log, &state, StateCompleted, map[string]interface{}{
		"category":   string(category),
		"score":      confidence.Score,
		"level":      string(confidence.Level),
		"metric":     string(educator.Outcome.Metric),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &models.ClassificationResult{
		Accepted: &models.AcceptedResult{
			ObjectName:       itemName,
			Category:         category,
			CategoryInfo:     models.MetadataFor(category),
			PreparationSteps: reasoning.Outcome.PreparationSteps,
			Confidence:       confidence,
			EnvironmentalImpact: models.EnvironmentalImpact{
				Metric:   educator.Outcome.Metric,
				Feedback: educator.Outcome.Feedback,
			},
		},
	}, nil
}

func (p *Pipeline) enter(log logger.Logger, current *State, next State, fields map[string]interface{}) {
	*current = next
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["state"] = string(next)
	if s, ok := step[next]; ok {
		fields["step"] = s
	}
	if next.Terminal() {
		log.Info("Classification finished", fields)
		return
	}
	log.Debug("Classification state", fields)
}

// runStage times one stage call and wraps it in a child span.
func runStage[T any](ctx context.Context, p *Pipeline, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := p.obs.StartSpan(ctx, "pipeline."+name)
	start := time.Now()
	out, err := fn(ctx)
	p.obs.RecordStage(ctx, name, time.Since(start), err)
	observability.EndSpan(span, err)
	return out, err
}

func outcomeOf(result *models.ClassificationResult, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case result.IsRejected():
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeAccepted
	}
}

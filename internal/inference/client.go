// internal/inference/client.go
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"greenguide/internal/common/errors"
	commonhttp "greenguide/internal/common/http"
	"greenguide/internal/common/logger"
	"greenguide/internal/common/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 4 << 20
	maxDetailBytes   = 2048
)

const (
	outcomeSuccess   = "success"
	outcomeTimeout   = "timeout"
	outcomeTransport = "transport_error"
	outcomeStatus    = "upstream_status"
	outcomeMalformed = "malformed_envelope"
)

type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client performs single chat-completions calls. It never retries.
type Client struct {
	config *Config
	sender commonhttp.Sender
	tracer trace.Tracer
	logger logger.Logger
}

func NewClient(config *Config, sender commonhttp.Sender, tracer trace.Tracer, log logger.Logger) *Client {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("inference")
	}
	return &Client{
		config: config,
		sender: sender,
		tracer: tracer,
		logger: log.With(map[string]interface{}{"component": "inference"}),
	}
}

// Invoke sends req and returns the first choice's message text.
// Failures are *errors.StandardError with an INFERENCE_* code.
func (c *Client) Invoke(ctx context.Context, req Request) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "inference.invoke", trace.WithAttributes(
		attribute.String("inference.model", req.Model),
		attribute.Int("inference.max_tokens", req.MaxTokens),
	))
	defer span.End()

	start := time.Now()
	text, status, err := c.do(ctx, req, timeout)
	latency := time.Since(start)

	outcome := outcomeOf(err)
	metrics.InferenceRequests.WithLabelValues(req.Model, outcome).Inc()
	metrics.InferenceDuration.WithLabelValues(req.Model).Observe(latency.Seconds())

	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("inference.outcome", outcome),
	)

	fields := map[string]interface{}{
		"model":     req.Model,
		"status":    status,
		"latencyMs": latency.Milliseconds(),
		"outcome":   outcome,
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		fields["error"] = err.Error()
		c.logger.Error("Inference call failed", fields)
		return "", err
	}

	span.SetStatus(codes.Ok, "")
	fields["responseChars"] = len(text)
	c.logger.Info("Inference call completed", fields)
	return text, nil
}

func (c *Client) do(ctx context.Context, req Request, timeout time.Duration) (string, int, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", 0, errors.NewInternalError(fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, errors.NewInferenceTransportError(req.Model, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.sender.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", 0, errors.NewInferenceTimeoutError(req.Model, timeout)
		}
		return "", 0, errors.NewInferenceTransportError(req.Model, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return "", resp.StatusCode, errors.NewInferenceTimeoutError(req.Model, timeout)
		}
		return "", resp.StatusCode, errors.NewInferenceTransportError(req.Model, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode, errors.NewInferenceUpstreamStatusError(req.Model, resp.StatusCode, truncate(string(payload), maxDetailBytes))
	}

	var envelope chatResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", resp.StatusCode, errors.NewInferenceMalformedEnvelopeError(req.Model, fmt.Sprintf("decode envelope: %v", err))
	}

	text, ok := envelope.messageText()
	if !ok {
		return "", resp.StatusCode, errors.NewInferenceMalformedEnvelopeError(req.Model, "missing choices[0].message.content")
	}
	return text, resp.StatusCode, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		if err != nil {
			return outcomeTransport
		}
		return outcomeSuccess
	}
	switch stdErr.Code {
	case errors.ErrCodeInferenceTimeout:
		return outcomeTimeout
	case errors.ErrCodeInferenceUpstreamStatus:
		return outcomeStatus
	case errors.ErrCodeInferenceMalformedEnvelope:
		return outcomeMalformed
	default:
		return outcomeTransport
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

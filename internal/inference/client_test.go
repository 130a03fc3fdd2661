// internal/inference/client_test.go
package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenguide/internal/common/errors"
	commonhttp "greenguide/internal/common/http"
	"greenguide/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, url string) (*Client, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := &Config{Endpoint: url, APIKey: "nvapi-test", Timeout: 2 * time.Second}
	return NewClient(cfg, commonhttp.NewClient(10*time.Second), tp.Tracer("test"), logger.NewTestLogger(t)), recorder
}

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id": "cmpl-1",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_Invoke_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer nvapi-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "vision-model", body["model"])
		assert.Equal(t, float64(200), body["max_tokens"])
		assert.Equal(t, 0.2, body["temperature"])

		messages := body["messages"].([]interface{})
		assert.Len(t, messages, 1)
		parts := messages[0].(map[string]interface{})["content"].([]interface{})
		if !assert.Len(t, parts, 2) {
			return
		}
		assert.Equal(t, "text", parts[0].(map[string]interface{})["type"])
		image := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
		assert.Equal(t, "data:image/jpeg;base64,AAAA", image["url"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion(`{"is_waste_item": true}`)))
	}))
	defer server.Close()

	client, recorder := newTestClient(t, server.URL+"/v1/chat/completions")

	text, err := client.Invoke(context.Background(), Request{
		Model:       "vision-model",
		Messages:    []Message{VisionMessage("what is this?", "data:image/jpeg;base64,AAAA")},
		MaxTokens:   200,
		Temperature: 0.2,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"is_waste_item": true}`, text)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "inference.invoke", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestClient_Invoke_ContentParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":[{"type":"text","text":"glass "},{"type":"text","text":"jar"}]}}]}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	text, err := client.Invoke(context.Background(), Request{Model: "m", Messages: []Message{TextMessage(RoleUser, "hi")}})
	require.NoError(t, err)
	assert.Equal(t, "glass jar", text)
}

// ==========================
// Error Mapping Tests
// ==========================

func TestClient_Invoke_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer server.Close()

	client, recorder := newTestClient(t, server.URL)
	_, err := client.Invoke(context.Background(), Request{Model: "reasoning-model"})

	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInferenceUpstreamStatus, stdErr.Code)
	assert.Equal(t, 503, stdErr.UpstreamStatus)
	assert.Contains(t, stdErr.Details, "model overloaded")
	assert.Equal(t, http.StatusServiceUnavailable, errors.HTTPStatus(err))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestClient_Invoke_MalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices": []}`},
		{"null content", `{"choices": [{"message": {"content": null}}]}`},
		{"missing message", `{"choices": [{}]}`},
		{"not json", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := newTestClient(t, server.URL)
			_, err := client.Invoke(context.Background(), Request{Model: "m"})
			assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceMalformedEnvelope), "got %v", err)
		})
	}
}

func TestClient_Invoke_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)

	start := time.Now()
	_, err := client.Invoke(context.Background(), Request{Model: "m", Timeout: 50 * time.Millisecond})

	assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceTimeout), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusGatewayTimeout, errors.HTTPStatus(err))
}

func TestClient_Invoke_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := newTestClient(t, url)
	_, err := client.Invoke(context.Background(), Request{Model: "m"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeInferenceTransportFailed), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))
}

func TestClient_Invoke_OmitsAuthWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(chatCompletion("ok")))
	}))
	defer server.Close()

	client := NewClient(&Config{Endpoint: server.URL}, commonhttp.NewClient(time.Second), nil, logger.NewNoOpLogger())
	text, err := client.Invoke(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

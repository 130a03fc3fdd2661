// internal/api/handlers.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"greenguide/internal/common/errors"
	"greenguide/internal/common/imaging"
	"greenguide/internal/models"
)

const (
	uploadField = "file"

	// multipartOverhead covers boundaries and part headers on top of the file itself.
	multipartOverhead = 64 << 10
	maxFormMemory     = 32 << 20
)

type healthResponse struct {
	Status           string                                              `json:"status"`
	APIKeyConfigured bool                                                `json:"api_key_configured"`
	ModelsLoaded     bool                                                `json:"models_loaded"`
	Categories       map[models.DisposalCategory]models.CategoryMetadata `json:"categories"`
}

type readyResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type rootResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Models  map[string]string `json:"models"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.errors.Write(w, r, errors.NewUploadTooLargeError(limit))
			return
		}
		if stderrors.Is(err, http.ErrNotMultipart) || stderrors.Is(err, http.ErrMissingBoundary) {
			s.errors.Write(w, r, errors.NewMissingFileError(uploadField))
			return
		}
		s.errors.Write(w, r, errors.NewImageDecodeFailedError(fmt.Errorf("read multipart form: %w", err)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.errors.Write(w, r, errors.NewMissingFileError(uploadField))
		return
	}
	defer file.Close()

	if header.Size > limit {
		s.errors.Write(w, r, errors.NewUploadTooLargeError(limit))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.errors.Write(w, r, errors.NewImageDecodeFailedError(fmt.Errorf("read upload: %w", err)))
		return
	}

	payload, err := imaging.Process(data, imaging.Options{
		MaxDimension: s.cfg.Image.MaxDimension,
		JPEGQuality:  s.cfg.Image.JPEGQuality,
		MaxPixels:    s.cfg.Image.MaxPixels,
	})
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}

	s.logger.Debug("Upload processed", map[string]interface{}{
		"filename":      header.Filename,
		"originalBytes": len(data),
		"jpegBytes":     len(payload.Data),
		"width":         payload.Width,
		"height":        payload.Height,
	})

	result, err := s.classifier.Classify(r.Context(), payload)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		APIKeyConfigured: s.cfg.Inference.CredentialConfigured(),
		ModelsLoaded:     true,
		Categories:       models.CategoryTable,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Inference.CredentialConfigured() {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status: "not_ready",
			Reason: fmt.Sprintf("inference credential missing or without %q prefix", s.cfg.Inference.CredentialPrefix),
		})
		return
	}
	writeJSON(w, http.StatusOK, readyResponse{Status: "ready"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Status:  "GreenGuide API is running",
		Version: s.cfg.App.Version,
		Models: map[string]string{
			"vision":    s.cfg.Inference.Vision.Model,
			"reasoning": s.cfg.Inference.Reasoning.Model,
			"educator":  s.cfg.Inference.Educator.Model,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

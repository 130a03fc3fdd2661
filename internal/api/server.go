// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"greenguide/internal/common/config"
	"greenguide/internal/common/errors"
	"greenguide/internal/common/logger"
	"greenguide/internal/common/ratelimit"
	"greenguide/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Classifier runs the full classification for one pre-processed image.
type Classifier interface {
	Classify(ctx context.Context, image *models.ImagePayload) (*models.ClassificationResult, error)
}

type Server struct {
	cfg        *config.Config
	classifier Classifier
	limiter    ratelimit.Limiter
	errors     *errors.ErrorHandler
	logger     logger.Logger
	metrics    http.Handler
	proxies    []netip.Prefix
}

type Option func(*Server)

// WithLimiter rate limits POST /classify. Without it every request is allowed.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithMetricsHandler replaces the default Prometheus handler on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func NewServer(cfg *config.Config, classifier Classifier, log logger.Logger, opts ...Option) *Server {
	log = log.With(map[string]interface{}{"component": "api"})
	s := &Server{
		cfg:        cfg,
		classifier: classifier,
		limiter:    ratelimit.Unlimited{},
		errors:     errors.NewErrorHandler(log),
		logger:     log,
		metrics:    promhttp.Handler(),
		proxies:    parseTrustedProxies(cfg.Server.TrustedProxies, log),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// parseTrustedProxies accepts bare IPs and CIDRs. Invalid entries are skipped.
func parseTrustedProxies(entries []string, log logger.Logger) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				log.Warn("Ignoring invalid trusted proxy", map[string]interface{}{"entry": entry, "error": err.Error()})
				continue
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn("Ignoring invalid trusted proxy", map[string]interface{}{"entry": entry, "error": err.Error()})
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

func (s *Server) trustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /classify", s.rateLimit(http.HandlerFunc(s.handleClassify)))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", s.metrics)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	var h http.Handler = mux
	h = s.cors(h)
	h = s.accessLog(h)
	h = s.requestID(h)
	h = s.recoverer(h)
	return h
}

// HTTPServer builds the http.Server for the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}
}

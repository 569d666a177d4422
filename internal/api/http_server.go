package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"webstudio/internal/config"
	"webstudio/internal/metrics"
	"webstudio/internal/models"
	"webstudio/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPServer exposes the catalog, checkout and admin endpoints.
type HTTPServer struct {
	cfg      config.APIConfig
	catalog  *service.CatalogService
	partners *service.PartnerCatalogService
	orders   *service.OrderService
	contacts *service.ContactService
	checkout *service.CheckoutService
	exporter OrderExporter
	limits   SubmissionLimiter
	logger   *zerolog.Logger
	server   *http.Server
	auth     *HTTPAuth

	submissionLimit  int
	submissionWindow time.Duration
}

// OrderExporter produces the admin XLSX report.
type OrderExporter interface {
	ExportOrders(ctx context.Context) (string, error)
}

// SubmissionLimiter throttles contact-form submissions per client key.
type SubmissionLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Deps struct {
	Catalog  *service.CatalogService
	Partners *service.PartnerCatalogService
	Orders   *service.OrderService
	Contacts *service.ContactService
	Checkout *service.CheckoutService
	Exporter OrderExporter
	Limits   SubmissionLimiter

	// Contact-form throttle; zero values fall back to the model defaults.
	SubmissionLimit  int
	SubmissionWindow time.Duration
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		catalog:  deps.Catalog,
		partners: deps.Partners,
		orders:   deps.Orders,
		contacts: deps.Contacts,
		checkout: deps.Checkout,
		exporter: deps.Exporter,
		limits:   deps.Limits,
		logger:   logger,

		submissionLimit:  deps.SubmissionLimit,
		submissionWindow: deps.SubmissionWindow,
	}
	if srv.submissionLimit <= 0 {
		srv.submissionLimit = models.RateLimitSubmissions
	}
	if srv.submissionWindow <= 0 {
		srv.submissionWindow = models.RateLimitWindow * time.Second
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/services", srv.handleServices)
	mux.HandleFunc("/api/categories", srv.handleCategories)
	mux.HandleFunc("/api/partner-services", srv.handlePartnerServices)
	mux.HandleFunc("/api/partner-services/link", srv.handlePartnerLink)
	mux.HandleFunc("/api/partner-groups", srv.handlePartnerGroups)
	mux.HandleFunc("/api/contact", srv.handleContact)
	mux.HandleFunc("/api/contacts", srv.handleContacts)
	mux.HandleFunc("/api/user-orders", srv.handleUserOrders)
	mux.HandleFunc("/api/orders", srv.handleOrders)
	mux.HandleFunc("/api/orders/stats", srv.handleOrderStats)
	mux.HandleFunc("/api/orders/export", srv.handleOrderExport)
	mux.HandleFunc("/api/checkout/session", srv.handleCheckoutSession)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HTTPAuth provides API-key auth for admin routes and per-key rate limiting
// for everything.
type HTTPAuth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled && isAdminRoute(r) {
			if err := a.checkAuth(r); err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAdminRoute separates the admin panel surface from the public one.
// Catalog reads, the contact form, checkout sessions and the profile
// lookup are public; every mutation of the catalog and the whole order
// surface require an API key.
func isAdminRoute(r *http.Request) bool {
	path := r.URL.Path
	switch path {
	case "/api/orders", "/api/orders/stats", "/api/orders/export", "/api/contacts":
		return true
	case "/api/services", "/api/partner-services", "/api/categories":
		return r.Method != http.MethodGet
	}
	return false
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKeyHeader := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if apiKeyHeader == "" {
		apiKeyHeader = "x-api-key"
	}
	extraHeader := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderExtra))
	if extraHeader == "" {
		extraHeader = "x-api-extra"
	}

	apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))
	extra := strings.TrimSpace(r.Header.Get(extraHeader))
	if apiKey == "" || extra == "" {
		return fmt.Errorf("missing api key headers")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return fmt.Errorf("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return fmt.Errorf("invalid extra header")
	}

	return nil
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	apiKeyHeader := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if apiKeyHeader == "" {
		apiKeyHeader = "x-api-key"
	}

	if apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		metrics.IncHTTP(r.URL.Path)
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"worklens/internal/backend"
	"worklens/internal/cache"
	"worklens/internal/core"
	"worklens/internal/log"
)

// readTimeout bounds backend reads so a slow source never hangs a
// dashboard request.
const readTimeout = 7 * time.Second

type taxonomy struct {
	DealCategories []string `json:"deal_categories"`
	WorkCategories []string `json:"work_categories"`
}

type Server struct {
	http.Server
	backend     backend.Backend
	rateLimiter *rateLimiter
	logger      *log.Logger
	httpLog     *log.StructuredLogger

	// Record list and taxonomy caches; every analytics endpoint computes
	// from the full record list, so one cached copy serves them all.
	recordsCache  *cache.LRUCache[[]core.TimesheetRecord]
	taxonomyCache *cache.LRUCache[taxonomy]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, b backend.Backend) *Server {
	mux := http.NewServeMux()

	logger := log.Default(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr: addr,
			// The base logger rides the context so even handlers outside
			// withSecurityHeaders resolve log.FromContext.
			Handler: log.Middleware(logger)(mux),
		},
		backend:          b,
		rateLimiter:      newRateLimiter(),
		logger:           logger,
		httpLog:          log.NewStructuredLogger(logger),
		recordsCache:     cache.NewLRUCache[[]core.TimesheetRecord](10, 5*time.Minute),
		taxonomyCache:    cache.NewLRUCache[taxonomy](10, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.withSecurityHeaders(s.handleReady))

	mux.HandleFunc("/api/records", s.withSecurityHeaders(s.handleRecords))
	mux.HandleFunc("/api/records/batch-import", s.withSecurityHeaders(s.handleBatchImport))
	mux.HandleFunc("/api/records/batch-delete", s.withSecurityHeaders(s.handleBatchDelete))
	mux.HandleFunc("/api/stats", s.withSecurityHeaders(s.handleStats))
	mux.HandleFunc("/api/categories", s.withSecurityHeaders(s.handleTaxonomy))

	mux.HandleFunc("/api/dashboard/categories", s.withSecurityHeaders(s.handleDashboardCategories))
	mux.HandleFunc("/api/dashboard/trend", s.withSecurityHeaders(s.handleDashboardTrend))
	mux.HandleFunc("/api/dashboard/heatmap", s.withSecurityHeaders(s.handleDashboardHeatmap))
	mux.HandleFunc("/api/dashboard/activity", s.withSecurityHeaders(s.handleDashboardActivity))

	return s
}

// startCacheCleanup runs periodic cleanup for the caches
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			recordsCleaned := s.recordsCache.CleanExpired()
			taxonomyCleaned := s.taxonomyCache.CleanExpired()
			if recordsCleaned > 0 || taxonomyCleaned > 0 {
				s.logger.Debug("Cache cleanup completed",
					"records_entries_removed", recordsCleaned,
					"taxonomy_entries_removed", taxonomyCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		// Generate request ID for tracing
		requestID := generateRequestID()

		// Handlers pull the request-scoped logger back out with
		// log.FromContext.
		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		s.httpLog.LogHTTPStart(ctx, r, clientIP, requestID)

		// Rate limit mutating requests only; dashboard reads are cached
		// and cheap.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP, requestID)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady verifies the backend answers before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	if _, err := s.backend.ListRecords(ctx); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "backend not ready").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

const recordsCacheKey = "records"
const taxonomyCacheKey = "taxonomy"

// loadRecords returns the full record list, serving from cache when warm.
func (s *Server) loadRecords(ctx context.Context) ([]core.TimesheetRecord, error) {
	if records, found := s.recordsCache.Get(recordsCacheKey); found {
		s.logger.DebugContext(ctx, "Records cache hit", "count", len(records))
		result := make([]core.TimesheetRecord, len(records))
		copy(result, records)
		return result, nil
	}

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	records, err := s.backend.ListRecords(cctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	s.recordsCache.Set(recordsCacheKey, records)
	s.logger.DebugContext(ctx, "Records cached", "count", len(records))
	return records, nil
}

// loadTaxonomy returns the category taxonomy, serving from cache when warm.
func (s *Server) loadTaxonomy(ctx context.Context) (taxonomy, error) {
	if tax, found := s.taxonomyCache.Get(taxonomyCacheKey); found {
		return tax, nil
	}

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	deals, works, err := s.backend.ListCategories(cctx)
	if err != nil {
		return taxonomy{}, fmt.Errorf("list categories: %w", err)
	}

	tax := taxonomy{DealCategories: deals, WorkCategories: works}
	s.taxonomyCache.Set(taxonomyCacheKey, tax)
	return tax, nil
}

// invalidateCaches drops cached reads after any write.
func (s *Server) invalidateCaches() {
	s.recordsCache.Clear()
	s.taxonomyCache.Clear()
}

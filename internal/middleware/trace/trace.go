package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"findash/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	HeaderRequestID = "X-Request-ID"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger
	metrics   counters
}

type counters struct {
	total      atomic.Int64
	inFlight   atomic.Int64
	status2xx  atomic.Int64
	status4xx  atomic.Int64
	status5xx  atomic.Int64
	durationUs atomic.Int64
}

// Metrics is a snapshot of request counters.
type Metrics struct {
	TotalRequests     int64
	InFlight          int64
	Status2xx         int64
	Status4xx         int64
	Status5xx         int64
	AverageDurationMs float64
}

// NewMiddleware creates a new trace middleware
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
	}
}

// Middleware assigns a request ID, puts a request-scoped logger in the
// context and logs request start and completion.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	sl := log.NewStructuredLogger(m.logger)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, log.LoggerContextKey, m.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		m.metrics.total.Add(1)
		m.metrics.inFlight.Add(1)
		defer m.metrics.inFlight.Add(-1)

		sl.LogHTTPStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.metrics.durationUs.Add(duration.Microseconds())
		switch {
		case rw.statusCode >= 500:
			m.metrics.status5xx.Add(1)
		case rw.statusCode >= 400:
			m.metrics.status4xx.Add(1)
		default:
			m.metrics.status2xx.Add(1)
		}

		sl.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Flush lets streaming handlers flush through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	total := m.metrics.total.Load()
	out := Metrics{
		TotalRequests: total,
		InFlight:      m.metrics.inFlight.Load(),
		Status2xx:     m.metrics.status2xx.Load(),
		Status4xx:     m.metrics.status4xx.Load(),
		Status5xx:     m.metrics.status5xx.Load(),
	}
	if done := out.Status2xx + out.Status4xx + out.Status5xx; done > 0 {
		out.AverageDurationMs = float64(m.metrics.durationUs.Load()) / float64(done) / 1000
	}
	return out
}

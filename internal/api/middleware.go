package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joy7758/redline/internal/domain"
	"github.com/joy7758/redline/internal/privacy"
)

// Context keys for trace propagation.
type contextKey string

const (
	// TraceIDKey is the context key for trace ID.
	TraceIDKey contextKey = "traceID"

	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "requestID"

	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// TraceIDHeader is the HTTP header for trace ID.
	TraceIDHeader = "X-Trace-ID"

	// ConfirmSensitiveHeader acknowledges a request that touches
	// sensitive personal-information categories.
	ConfirmSensitiveHeader = "X-Confirm-Sensitive"
)

var tracer = otel.Tracer("redline-api")

// TracingMiddleware creates OpenTelemetry spans and propagates trace context.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Generate or extract request ID
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// Start span
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
				attribute.String("request.id", requestID),
			),
		)
		defer span.End()

		// Get trace ID from span
		traceID := span.SpanContext().TraceID().String()
		if !span.SpanContext().TraceID().IsValid() {
			traceID = requestID
		}

		// Add to context
		ctx = context.WithValue(ctx, RequestIDKey, requestID)
		ctx = context.WithValue(ctx, TraceIDKey, traceID)

		// Set response headers
		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs HTTP requests with structured logging.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		requestID, _ := r.Context().Value(RequestIDKey).(string)
		traceID, _ := r.Context().Value(TraceIDKey).(string)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"request_id", requestID,
			"trace_id", traceID,
		)
	})
}

// CORSMiddleware handles Cross-Origin Resource Sharing for browser clients.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Trace-ID, X-Confirm-Sensitive, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Trace-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RecoverMiddleware recovers from panics and returns 500.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
				)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware bounds per-client request rates using atomic
// cache counters keyed by client IP.
func RateLimitMiddleware(cache domain.Cache, cfg domain.RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			count, err := cache.IncrementCounter(r.Context(), "ratelimit:"+clientIP(r), cfg.Window)
			if err != nil {
				// A broken counter must not take the API down.
				slog.Warn("rate limit counter failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(cfg.MaxRequests) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":   "RATE_LIMITED",
					"message": fmt.Sprintf("rate limit exceeded: %d requests per %s", cfg.MaxRequests, cfg.Window),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaskingMiddleware rewrites PII in JSON responses and injects the
// compliance metadata block. Non-JSON responses pass through untouched.
func MaskingMiddleware(masker *privacy.Masker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := &bufferingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(bw, r)

			body := bw.buf.Bytes()
			if len(body) > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
				if masked, err := masker.MaskJSON(body); err == nil {
					body = privacy.InjectCompliance(masked)
				}
			}

			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.WriteHeader(bw.statusCode)
			w.Write(body)
		})
	}
}

// SensitiveInputMiddleware blocks request bodies that mention sensitive
// personal-information categories unless the caller explicitly confirms.
func SensitiveInputMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Header.Get(ConfirmSensitiveHeader) == "true" {
			next.ServeHTTP(w, r)
			return
		}

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r.Body); err != nil {
			writeError(w, domain.NewInvalidInput("failed to read request body", nil))
			return
		}
		r.Body.Close()
		r.Body = newReadCloser(buf.Bytes())

		if keyword, hit := privacy.CheckSensitiveInput(buf.Bytes()); hit {
			writeError(w, domain.NewInvalidInput(
				fmt.Sprintf("检测到敏感信息字段 %q，需设置 %s: true 显式确认", keyword, ConfirmSensitiveHeader),
				map[string]any{"keyword": keyword},
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// bufferingWriter holds the body back so the masking pass can rewrite
// it before anything reaches the wire.
type bufferingWriter struct {
	http.ResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func (bw *bufferingWriter) WriteHeader(code int) {
	bw.statusCode = code
}

func (bw *bufferingWriter) Write(p []byte) (int, error) {
	return bw.buf.Write(p)
}

func newReadCloser(b []byte) *bodyReader {
	return &bodyReader{Reader: bytes.NewReader(b)}
}

type bodyReader struct {
	*bytes.Reader
}

func (*bodyReader) Close() error { return nil }

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError serializes a failure as the structured error payload,
// mapping error kinds to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	derr := domain.AsError(err)

	status := http.StatusInternalServerError
	switch derr.Kind {
	case domain.KindInvalidInput:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindUnavailable:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, derr)
}

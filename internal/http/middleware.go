package http

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id supplied by a proxy or echoed back to the client.
const RequestIDHeader = "X-Request-Id"

// MaxBodyBytes caps request bodies accepted by the API.
const MaxBodyBytes = 1 << 20 // 1MiB

type requestInfoKey struct{}

// RequestInfo describes the origin of a request for logging and auditing.
type RequestInfo struct {
	ID       string
	ClientIP string
}

// ExtractClientIP returns the caller address, preferring X-Forwarded-For, then
// X-Real-IP, then RemoteAddr without its port.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RequestInfoFromContext returns the request info stored by RequestInfoMiddleware,
// or the zero value when absent.
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

// RequestInfoMiddleware records the client address and a request id in the
// context. An incoming X-Request-Id is kept, otherwise a UUIDv7 is generated.
// The id is echoed in the response headers.
func RequestInfoMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := RequestInfo{
				ID:       strings.TrimSpace(r.Header.Get(RequestIDHeader)),
				ClientIP: ExtractClientIP(r),
			}
			if info.ID == "" || len(info.ID) > 128 {
				info.ID = uuid.Must(uuid.NewV7()).String()
			}

			w.Header().Set(RequestIDHeader, info.ID)

			ctx := context.WithValue(r.Context(), requestInfoKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LimitBody caps the request body at limit bytes. Reads past the cap fail with
// *http.MaxBytesError.
func LimitBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

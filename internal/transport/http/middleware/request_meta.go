package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cloudforge/invoice-service/internal/pkg/requestmeta"
)

const HeaderXRequestID = "X-Request-Id"

// RequestMeta tags every request with an id, the client device and the
// origin address, then stores them in context. The audit log reads them
// back when appending events.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderXRequestID, reqID)

		ctx := requestmeta.WithMeta(r.Context(), requestmeta.Meta{
			RequestID: reqID,
			Device:    r.UserAgent(),
			IP:        clientIP(r),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP prefers X-Forwarded-For (first hop) over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

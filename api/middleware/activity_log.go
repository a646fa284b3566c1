package middleware

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kodacard/kodacard-backend/internal/activitylog"
)

// maxAuditBodyBytes caps how much of a request body is captured for the
// audit trail. Larger bodies are truncated, not rejected.
const maxAuditBodyBytes = 4 << 10

type activityRecorder interface {
	Record(rec activitylog.Record)
}

// ActivityLog captures a summary of each mutating request and hands it to the
// recorder after the response has been written. Reads are not audited.
func ActivityLog(recorder activityRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil {
				limited, err := io.ReadAll(io.LimitReader(r.Body, maxAuditBodyBytes))
				if err == nil {
					body = limited
					r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(limited), r.Body))
				}
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			entry := activitylog.Record{
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     rec.status,
				IP:         clientIP(r),
				UserAgent:  r.UserAgent(),
				Payload:    body,
				DurationMS: time.Since(start).Milliseconds(),
			}
			if id := UserIDFromContext(r.Context()); id != 0 {
				entry.UserID = &id
			}
			recorder.Record(entry)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Package middleware holds HTTP middleware shared by the gateway routes.
package middleware

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("http")

// RequestIDHeader carries the per-process request sequence number.
const RequestIDHeader = "X-Request-Id"

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

var reqID atomic.Uint64

// Logging tags each request with an id and writes one access line when it
// finishes. Server errors are logged at Warning.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strconv.FormatUint(reqID.Add(1), 10)
		w.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		line := "request_id=%s method=%s path=%s status=%d bytes=%d duration=%s"
		args := []any{requestID, r.Method, r.URL.Path, rec.status, rec.bytes, time.Since(start)}
		if rec.status >= http.StatusInternalServerError {
			log.Warningf(line, args...)
			return
		}
		log.Infof(line, args...)
	})
}

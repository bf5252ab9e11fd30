package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	logging "github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logging.SetBackend(logging.NewLogBackend(&buf, "", 0))

	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	var ids []uint64
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		id, err := strconv.ParseUint(rec.Header().Get(RequestIDHeader), 10, 64)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Greater(t, ids[1], ids[0])

	out := buf.String()
	assert.Contains(t, out, "method=GET path=/health status=418 bytes=15")
}

func TestLoggingDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logging.SetBackend(logging.NewLogBackend(&buf, "", 0))

	h := Logging(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sms", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "path=/sms status=200 bytes=0")
}

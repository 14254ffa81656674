package httpx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_RecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(&http.Cookie{Name: ConsoleSessionCookie, Value: "0123456789abcdef"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/users", entry["path"])
	assert.InDelta(t, http.StatusCreated, entry["status"], 0)
	assert.InDelta(t, 5, entry["bytes"], 0)
	assert.Equal(t, true, entry["htmx"])
	assert.Equal(t, "01234567", entry["session"])
}

func TestRecover_ReturnsServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestShortSession(t *testing.T) {
	assert.Equal(t, "abc", shortSession("abc"))
	assert.Equal(t, "abcdefgh", shortSession("abcdefghij"))
}

package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionEcho(cfg ConsoleSessionConfig) (http.Handler, *string) {
	var seen string
	h := ConsoleSession(cfg)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = ConsoleSessionFromContext(r.Context())
	}))
	return h, &seen
}

func TestConsoleSession_IssuesCookie(t *testing.T) {
	h, seen := sessionEcho(ConsoleSessionConfig{TTL: time.Hour, CookieDomain: "example.com"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	resp := w.Result()
	defer resp.Body.Close()

	c := findCookie(resp, ConsoleSessionCookie)
	require.NotNil(t, c)
	_, err := uuid.Parse(c.Value)
	require.NoError(t, err)
	assert.Equal(t, c.Value, *seen)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Equal(t, "example.com", c.Domain)
}

func TestConsoleSession_ReusesValidCookie(t *testing.T) {
	h, seen := sessionEcho(ConsoleSessionConfig{})
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ConsoleSessionCookie, Value: id})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, id, *seen)
	assert.Nil(t, findCookie(resp, ConsoleSessionCookie))
}

func TestConsoleSession_ReplacesGarbageCookie(t *testing.T) {
	h, seen := sessionEcho(ConsoleSessionConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ConsoleSessionCookie, Value: "../../etc/passwd"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()

	c := findCookie(resp, ConsoleSessionCookie)
	require.NotNil(t, c)
	assert.NotEqual(t, "../../etc/passwd", *seen)
	assert.Equal(t, c.Value, *seen)
}

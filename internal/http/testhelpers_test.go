package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/target/userdesk/internal/adapters/memory"
	"github.com/target/userdesk/internal/mocks"
	"github.com/target/userdesk/internal/service"
	"github.com/target/userdesk/internal/testutil"
)

// SkipIfNoTemplates skips tests that need the on-disk templates.
func SkipIfNoTemplates(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping")
	}
}

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping if templates are missing.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	SkipIfNoTemplates(t)
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: os.DirFS(TemplatePathFromTest)})
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return tr
}

// ContainsAll checks if a string contains all the given substrings.
func ContainsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// consoleHarness drives the full router as one browser would: it keeps the
// session and CSRF cookies between requests.
type consoleHarness struct {
	t       *testing.T
	handler http.Handler
	api     *mocks.MockUsersAPI
	store   *memory.StateStore
	cookies map[string]*http.Cookie
}

func newConsoleHarness(t *testing.T) *consoleHarness {
	t.Helper()
	SkipIfNoTemplates(t)

	ctrl := gomock.NewController(t)
	api := mocks.NewMockUsersAPI(ctrl)
	store := memory.NewStateStore(time.Hour)
	svc := service.NewUserListService(service.UserListServiceOptions{
		API:   api,
		Store: store,
		Config: service.UserListConfig{
			ToastDuration: 3 * time.Second,
			Now:           testutil.FixedTimeFunc(testutil.TestTime()),
		},
	})
	handler, err := NewRouter(RouterServices{
		Users:      svc,
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	h := &consoleHarness{t: t, handler: handler, api: api, store: store, cookies: map[string]*http.Cookie{}}
	// Mint session and CSRF cookies without touching the users API.
	h.do(consoleRequest{method: http.MethodGet, path: "/healthz"})
	return h
}

type consoleRequest struct {
	method string
	path   string
	form   url.Values
	htmx   bool
	noCSRF bool
}

func (h *consoleHarness) do(req consoleRequest) *httptest.ResponseRecorder {
	h.t.Helper()

	var body *strings.Reader
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range h.cookies {
		r.AddCookie(c)
	}
	if req.htmx {
		r.Header.Set("Hx-Request", "true")
	}
	if c, ok := h.cookies[DefaultCSRFCookieName]; ok && !req.noCSRF {
		r.Header.Set(DefaultCSRFHeaderName, c.Value)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)

	resp := rec.Result()
	defer resp.Body.Close()
	for _, c := range resp.Cookies() {
		h.cookies[c.Name] = c
	}
	return rec
}

func (h *consoleHarness) htmx(method, path string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.do(consoleRequest{method: method, path: path, form: form, htmx: true})
}

func (h *consoleHarness) session() string {
	h.t.Helper()
	c, ok := h.cookies[ConsoleSessionCookie]
	if !ok {
		h.t.Fatal("no console session cookie")
	}
	return c.Value
}

package httpx

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/target/userdesk"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Users        ConsoleService
	HealthChecks []HealthCheck
	CookieDomain string
	SessionTTL   time.Duration
	IsDev        bool         // serve templates and static files from disk
	TemplateFS   fs.FS        // overrides the embedded/disk templates (tests)
	Logger       *slog.Logger // optional
}

// NewRouter builds the console's handler: ConsoleSession -> CSRF -> routes.
// Recover, Logging and Compression are applied by the caller.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Users == nil {
		return nil, errors.New("router requires a console service")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services),
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	h := &UserHandlers{T: tr, Svc: services.Users, IsDev: services.IsDev, Logger: logger}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", healthHandler(services.HealthChecks...))
	mux.Handle("HEAD /healthz", healthHandler(services.HealthChecks...))
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))
	registerUserRoutes(mux, h)

	var handler http.Handler = &notFoundHandler{mux: mux, users: h}
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain, TTL: services.SessionTTL})(handler)
	handler = ConsoleSession(ConsoleSessionConfig{CookieDomain: services.CookieDomain, TTL: services.SessionTTL})(handler)
	return handler, nil
}

// registerUserRoutes wires the console. Row actions carry the user id in the path.
func registerUserRoutes(mux *http.ServeMux, h *UserHandlers) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET "+PathConsole, h.Console)
	mux.HandleFunc("POST /users", h.Submit)
	mux.HandleFunc("POST /users/cancel", h.Cancel)
	mux.HandleFunc("POST /users/{id}/edit", h.Edit)
	mux.HandleFunc("GET /users/{id}/delete", h.ConfirmDelete)
	mux.HandleFunc("POST /users/{id}/delete", h.Delete)
	mux.HandleFunc("GET /users/toast/{gen}/clear", h.ClearToast)
}

func templateFS(services RouterServices) fs.FS {
	if services.TemplateFS != nil {
		return services.TemplateFS
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(userdesk.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	sub, err := fs.Sub(userdesk.StaticFS, "frontend/static")
	if err != nil {
		logger.Error("failed to create sub-filesystem for static assets", slog.Any("error", err))
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))), true)
}

// staticWithCacheHeaders lets browsers cache embedded assets for an hour;
// disk-served dev assets are never cached.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and replaces its plain-text 404s.
type notFoundHandler struct {
	mux   *http.ServeMux
	users *UserHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only unmatched requests are buffered; matched routes write straight through.
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}

	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status == http.StatusNotFound && !strings.HasPrefix(r.URL.Path, "/static/") {
		h.users.NotFound(w, r)
		return
	}
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}

package httpx

import (
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/target/userdesk/internal/errors"
	obserrors "github.com/target/userdesk/internal/observability/errors"
)

// fail logs err and answers with the matching status. htmx requests get a
// short text body (htmx does not swap error responses); browsers get the error page.
func (h *UserHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger().LogAttrs(r.Context(), level, "console request failed",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status", status),
		slog.String("error_class", obserrors.Classify(err)),
		slog.Any("error", err),
	)

	msg := userMessage(err, status)
	if IsHTMX(r) {
		http.Error(w, msg, status)
		return
	}
	h.renderErrorPage(w, status, msg)
}

// userMessage exposes validation messages; everything else gets the status text.
func userMessage(err error, status int) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeValidation {
		return appErr.Message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}

func (h *UserHandlers) renderErrorPage(w http.ResponseWriter, status int, msg string) {
	data := map[string]any{
		"Title":   http.StatusText(status) + " · userdesk",
		"Code":    strconv.Itoa(status),
		"Message": msg,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if h.T == nil {
		_, _ = w.Write([]byte(msg))
		return
	}
	if err := h.T.RenderError(w, data); err != nil {
		_, _ = w.Write([]byte(msg))
	}
}

// NotFound renders the 404 page for browsers and a JSON body for everything else.
func (h *UserHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if acceptsHTML(r) {
		h.renderErrorPage(w, http.StatusNotFound, "The page you're looking for doesn't exist.")
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: string(apperrors.ErrCodeNotFound),
		Err:     apperrors.NotFound("not found"),
	})
}

func (h *UserHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="template-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`))
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// acceptsHTML reports whether the client should get an HTML page rather than
// JSON: htmx requests, requests without Accept, and anything accepting text/html.
func acceptsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}

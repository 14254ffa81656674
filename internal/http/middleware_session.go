package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConsoleSessionCookie names the cookie that binds a browser to its console state.
const ConsoleSessionCookie = "userdesk_session"

// DefaultConsoleSessionTTL is the cookie lifetime when none is configured.
const DefaultConsoleSessionTTL = 12 * time.Hour

// ConsoleSessionConfig configures the ConsoleSession middleware.
type ConsoleSessionConfig struct {
	CookieDomain string
	TTL          time.Duration
}

// ConsoleSession assigns each browser a random session id. The id keys the
// per-browser console state; it is not an authentication credential.
// Cookies that do not hold a valid UUID are replaced.
func ConsoleSession(cfg ConsoleSessionConfig) func(http.Handler) http.Handler {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConsoleSessionTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(ConsoleSessionCookie); err == nil {
				if parsed, perr := uuid.Parse(c.Value); perr == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				setCookie(w, r, cookieParams{
					Name:     ConsoleSessionCookie,
					Value:    id,
					Domain:   cfg.CookieDomain,
					MaxAge:   cfg.TTL,
					HTTPOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(SetConsoleSession(r.Context(), id)))
		})
	}
}

// cookieParams groups the attributes shared by the console cookies.
type cookieParams struct {
	Name     string
	Value    string
	Domain   string
	MaxAge   time.Duration
	HTTPOnly bool
	SameSite http.SameSite
}

func setCookie(w http.ResponseWriter, r *http.Request, p cookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: p.HTTPOnly,
		Secure:   r.TLS != nil || isForwardedHTTPS(r),
		SameSite: p.SameSite,
		MaxAge:   int(p.MaxAge / time.Second),
	})
}

// isForwardedHTTPS checks X-Forwarded-Proto, which may hold a comma-separated list.
func isForwardedHTTPS(r *http.Request) bool {
	for proto := range strings.SplitSeq(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

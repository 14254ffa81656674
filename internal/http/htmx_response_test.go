package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMXResponse_Redirect(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "redirect to root", url: "/"},
		{name: "redirect with query params", url: "/?notice=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HTMX(w).Redirect(tt.url)

			if got := w.Header().Get("Hx-Redirect"); got != tt.url {
				t.Errorf("Redirect() header = %v, want %v", got, tt.url)
			}
			if w.Code != http.StatusNoContent {
				t.Errorf("Redirect() status = %v, want %v", w.Code, http.StatusNoContent)
			}
		})
	}
}

func TestHTMXResponse_UsersChanged(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  string
	}{
		{name: "empty list", count: 0, want: `{"users:changed":{"count":0}}`},
		{name: "three users", count: 3, want: `{"users:changed":{"count":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HTMX(w).UsersChanged(tt.count)
			if got := w.Header().Get("Hx-Trigger"); got != tt.want {
				t.Errorf("Hx-Trigger = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHTMXResponse_NoSwap(t *testing.T) {
	w := httptest.NewRecorder()
	HTMX(w).NoSwap()

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Hx-Reswap"); got != "none" {
		t.Errorf("Hx-Reswap = %q", got)
	}
}

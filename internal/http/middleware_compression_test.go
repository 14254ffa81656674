package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const contentEncodingGzip = "gzip"

type compressionTestConfig struct {
	Handler        http.Handler
	Config         CompressionConfig
	Method         string
	AcceptEncoding string
}

func runCompressionTest(t *testing.T, cfg compressionTestConfig) *http.Response {
	t.Helper()

	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, "/", nil)
	if cfg.AcceptEncoding != "" {
		req.Header.Set("Accept-Encoding", cfg.AcceptEncoding)
	}

	rec := httptest.NewRecorder()
	Compression(cfg.Config)(cfg.Handler).ServeHTTP(rec, req)
	return rec.Result()
}

func htmlHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func decompressGzipBody(t *testing.T, r io.Reader) string {
	t.Helper()

	gr, err := gzip.NewReader(r)
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer gr.Close()

	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("failed to read decompressed body: %v", err)
	}
	return string(body)
}

func TestCompression(t *testing.T) {
	content := strings.Repeat("<tr><td>#1</td><td>ada</td></tr>", 200)

	tests := []struct {
		name           string
		acceptEncoding string
		level          int
		expectGzip     bool
	}{
		{"client accepts gzip", "gzip, deflate", 6, true},
		{"client does not accept gzip", "deflate", 6, false},
		{"no accept-encoding header", "", 6, false},
		{"default level", "gzip", 0, true},
		{"fastest", "gzip", 1, true},
		{"best", "gzip", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := runCompressionTest(t, compressionTestConfig{
				Handler:        htmlHandler(http.StatusOK, content),
				Config:         CompressionConfig{Level: tt.level},
				AcceptEncoding: tt.acceptEncoding,
			})
			defer resp.Body.Close()

			if !tt.expectGzip {
				if resp.Header.Get("Content-Encoding") == contentEncodingGzip {
					t.Fatal("expected no gzip encoding")
				}
				body, _ := io.ReadAll(resp.Body)
				if string(body) != content {
					t.Error("content mismatch")
				}
				return
			}

			if resp.Header.Get("Content-Encoding") != contentEncodingGzip {
				t.Fatalf("expected gzip, got %q", resp.Header.Get("Content-Encoding"))
			}
			if resp.Header.Get("Vary") != "Accept-Encoding" {
				t.Errorf("expected Vary: Accept-Encoding, got %q", resp.Header.Get("Vary"))
			}
			if resp.Header.Get("Content-Length") != "" {
				t.Errorf("expected no Content-Length, got %q", resp.Header.Get("Content-Length"))
			}
			if got := decompressGzipBody(t, resp.Body); got != content {
				t.Error("decompressed content mismatch")
			}
		})
	}
}

func TestCompressionWithStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		expectGzip bool
	}{
		{"200 OK", http.StatusOK, "console", true},
		{"404 Not Found", http.StatusNotFound, "missing", true},
		{"500 Internal Server Error", http.StatusInternalServerError, "boom", true},
		{"204 No Content", http.StatusNoContent, "", false},
		{"304 Not Modified", http.StatusNotModified, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := runCompressionTest(t, compressionTestConfig{
				Handler:        htmlHandler(tt.statusCode, tt.body),
				AcceptEncoding: "gzip",
			})
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("expected status %d, got %d", tt.statusCode, resp.StatusCode)
			}
			got := resp.Header.Get("Content-Encoding") == contentEncodingGzip
			if got != tt.expectGzip {
				t.Errorf("gzip = %v, want %v", got, tt.expectGzip)
			}
		})
	}
}

func TestCompressionContentTypeFiltering(t *testing.T) {
	tests := []struct {
		contentType string
		expectGzip  bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"text/css", true},
		{"application/json", true},
		{"image/svg+xml", true},
		{"image/png", false},
		{"application/zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = io.WriteString(w, "payload")
			})
			resp := runCompressionTest(t, compressionTestConfig{Handler: h, AcceptEncoding: "gzip"})
			defer resp.Body.Close()

			got := resp.Header.Get("Content-Encoding") == contentEncodingGzip
			if got != tt.expectGzip {
				t.Errorf("gzip = %v, want %v", got, tt.expectGzip)
			}
		})
	}
}

func TestCompressionHEADRequest(t *testing.T) {
	resp := runCompressionTest(t, compressionTestConfig{
		Handler:        htmlHandler(http.StatusOK, ""),
		Method:         http.MethodHead,
		AcceptEncoding: "gzip",
	})
	defer resp.Body.Close()

	if resp.Header.Get("Content-Encoding") == contentEncodingGzip {
		t.Error("expected no gzip encoding for HEAD request")
	}
}

func TestCompressionAcceptEncodingQValue(t *testing.T) {
	tests := []struct {
		acceptEncoding string
		want           bool
	}{
		{"gzip;q=1", true},
		{"gzip;q=0.5", true},
		{"gzip;q=0", false},
		{"gzip; q=0.0", false},
		{"deflate, gzip", true},
		{"GZIP", true},
		{"x-gzip", false},
		{"deflate", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.acceptEncoding, func(t *testing.T) {
			if got := acceptsGzip(tt.acceptEncoding); got != tt.want {
				t.Errorf("acceptsGzip(%q) = %v, want %v", tt.acceptEncoding, got, tt.want)
			}
		})
	}
}

func TestCompressionPreExistingContentEncoding(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "br")
		_, _ = io.WriteString(w, "already encoded")
	})
	resp := runCompressionTest(t, compressionTestConfig{Handler: h, AcceptEncoding: "gzip"})
	defer resp.Body.Close()

	if resp.Header.Get("Content-Encoding") != "br" {
		t.Errorf("expected Content-Encoding: br, got %q", resp.Header.Get("Content-Encoding"))
	}
}

func TestCompressionMinSize(t *testing.T) {
	t.Run("small body sent uncompressed", func(t *testing.T) {
		resp := runCompressionTest(t, compressionTestConfig{
			Handler:        htmlHandler(http.StatusOK, "tiny"),
			Config:         CompressionConfig{MinSize: 1024},
			AcceptEncoding: "gzip",
		})
		defer resp.Body.Close()

		if resp.Header.Get("Content-Encoding") == contentEncodingGzip {
			t.Fatal("expected small body to skip compression")
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != "tiny" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("large body compressed", func(t *testing.T) {
		content := strings.Repeat("x", 4096)
		resp := runCompressionTest(t, compressionTestConfig{
			Handler:        htmlHandler(http.StatusOK, content),
			Config:         CompressionConfig{MinSize: 1024},
			AcceptEncoding: "gzip",
		})
		defer resp.Body.Close()

		if resp.Header.Get("Content-Encoding") != contentEncodingGzip {
			t.Fatal("expected gzip for large body")
		}
		if got := decompressGzipBody(t, resp.Body); got != content {
			t.Error("decompressed content mismatch")
		}
	})
}

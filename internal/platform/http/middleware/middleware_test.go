package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type allowFunc func(key string) bool

func (f allowFunc) Allow(key string) bool { return f(key) }

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/api/recipes/:id/", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/5/", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"route":"/api/recipes/:id/"`)
	assert.Contains(t, out, `"path":"/api/recipes/5/"`)
	assert.Contains(t, out, `"status":404`)
}

func TestRequestLogger_Unmatched(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Contains(t, buf.String(), `"route":"unmatched"`)
}

func TestRateLimit(t *testing.T) {
	allowed := map[string]bool{"192.0.2.1": true}
	r := gin.New()
	r.Use(RateLimit(allowFunc(func(key string) bool { return allowed[key] })))
	r.POST("/api/users/token/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/token/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("throttled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/token/", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.JSONEq(t, `{"detail":"Request was throttled."}`, w.Body.String())
	})
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/tags/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", MetricsHandler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tags/", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/tags/",status_code="200"}`)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name     string
		origins  []string
		origin   string
		expected string
	}{
		{"all origins when empty", nil, "https://any.example", "*"},
		{"wildcard", []string{"*"}, "https://any.example", "*"},
		{"listed origin", []string{"https://app.example"}, "https://app.example", "https://app.example"},
		{"unlisted origin", []string{"https://app.example"}, "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/api/recipes/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/api/recipes/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func newBodyRouter(limit int64) *gin.Engine {
	r := gin.New()
	r.Use(MaxBodySize(limit))
	r.POST("/upload", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestMaxBodySize(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		contentLength int64
		expected      int
	}{
		{"within limit", 50, 50, http.StatusOK},
		{"content length over limit", 200, 200, http.StatusRequestEntityTooLarge},
		{"streaming body over limit", 200, -1, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", tt.size)))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			newBodyRouter(100).ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

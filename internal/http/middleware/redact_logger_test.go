package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRedact_Patterns(t *testing.T) {
	cases := map[string]string{
		"id=123e4567-e89b-42d3-a456-426614174000": "id=[REDACTED:id]",
		"mail=traveler@example.com":               "mail=[REDACTED:email]",
		"call 212-555-1212":                       "call [REDACTED:phone]",
		"destination=Baku&days=5":                 "destination=Baku&days=5",
		"":                                        "",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Fatalf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactingLogger_ScrubsAndAttachesLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Identity(), RedactingLogger(RedactOptions{MaskHeaders: []string{" X-Api-Key "}}))
	r.GET("/conversations/:id", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		LoggerFrom(c).Info().Msg("from handler")
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc?email=a@b.io", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k-123")
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(requestIDHeader, "rid-7")
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 log lines, got %d: %s", len(lines), buf.String())
	}
	for _, ln := range lines[:2] {
		var m map[string]any
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if m["request_id"] != "rid-7" || m["user_id"] != "u1" {
			t.Fatalf("scoped logger fields missing: %v", m)
		}
	}

	var access map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &access); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if access["message"] != "http_request" || access["path"] != "/conversations/:id" || access["level"] != "info" {
		t.Fatalf("access log = %v", access)
	}
	if access["query"] != "email=[REDACTED:email]" {
		t.Fatalf("query not scrubbed: %v", access["query"])
	}
	headers := access["headers"].(map[string]any)
	if headers["Authorization"] != "[REDACTED]" || headers["X-Api-Key"] != "[REDACTED]" {
		t.Fatalf("headers not masked: %v", headers)
	}
}

func TestRedactingLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	r.GET("/err", func(c *gin.Context) {
		_ = c.Error(errors.New("upstream"))
		c.Status(http.StatusOK)
	})

	for path, level := range map[string]string{"/bad": "warn", "/fail": "error", "/err": "error", "/missing": "warn"} {
		buf.Reset()
		serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		var m map[string]any
		if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
			t.Fatalf("%s: decode: %v (%s)", path, err, buf.String())
		}
		if m["level"] != level {
			t.Fatalf("%s: level = %v, want %s", path, m["level"], level)
		}
	}
}

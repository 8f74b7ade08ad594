package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIdempotencyAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	if IsReplay(c) || IsRateBypass(c) {
		t.Fatalf("flags must default to false")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must be ignored")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must be ignored")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected replay")
	}
}

func TestIdempotencyValidator_NoHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	}))
	r.POST("/conversations/:id/feedback", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("key must be absent")
		}
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/conversations/c1/feedback", nil))
	if w.Code != http.StatusNoContent || called {
		t.Fatalf("code=%d lookup called=%v", w.Code, called)
	}
}

func TestIdempotencyValidator_RejectsInvalidKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
		{"default pattern", IdempotencyOptions{}, "has space"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestID(), IdempotencyValidator(tc.opts, nil))
			r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			req.Header.Set(HeaderIdempotencyKey, tc.key)
			w := serve(r, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["code"] != "bad_idempotency_key" || body["request_id"] == "" {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestIdempotencyValidator_LookupMissAndHit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type call struct{ user, conv, key string }
	var calls []call
	hit := false
	lookup := func(_ context.Context, userID, conversationID, key string, now time.Time) (bool, error) {
		if now.IsZero() || now.Location() != time.UTC {
			t.Fatalf("now must be UTC, got %v", now)
		}
		calls = append(calls, call{userID, conversationID, key})
		return hit, nil
	}

	r := gin.New()
	r.Use(Identity(), IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/conversations/:id/feedback", func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		if IsReplay(c) != IsRateBypass(c) {
			t.Fatalf("replay and bypass flags must agree")
		}
		c.JSON(http.StatusOK, gin.H{"key": key, "replay": IsReplay(c)})
	})

	send := func() map[string]any {
		req := httptest.NewRequest(http.MethodPost, "/conversations/c42/feedback", nil)
		req.Header.Set(HeaderIdempotencyKey, "fb-1")
		req.Header.Set(HeaderUserID, "u1")
		w := serve(r, req)
		var m map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return m
	}

	if m := send(); m["key"] != "fb-1" || m["replay"] != false {
		t.Fatalf("miss = %v", m)
	}
	hit = true
	if m := send(); m["replay"] != true {
		t.Fatalf("hit = %v", m)
	}
	if len(calls) != 2 || calls[0] != (call{"u1", "c42", "fb-1"}) {
		t.Fatalf("lookup calls = %+v", calls)
	}
}

func TestIdempotencyValidator_LookupErrorIsMiss(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, string, time.Time) (bool, error) {
		return false, errors.New("db down")
	}))
	r.POST("/conversations/:id/feedback", func(c *gin.Context) {
		if IsReplay(c) {
			t.Fatalf("lookup error must not replay")
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/conversations/c1/feedback", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	if w := serve(r, req); w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}

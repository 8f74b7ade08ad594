// Package middleware contains the Gin middleware shared by the travel API.
//
// This file holds the request plumbing every route relies on:
//
//   - RequestID() reuses or mints the X-Request-ID correlation id.
//   - Identity() resolves the caller from the X-User-ID header.
//   - Recovery() turns panics into the standard JSON error envelope.
//   - LoggerFrom() and UserID() expose the request-scoped values to handlers.
//
// Recommended order: RequestID, Identity, RedactingLogger, Recovery, so the
// access log and any recovered panic carry both ids.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"

	// UserIDKey is the Gin context key holding the caller's user id.
	UserIDKey = "userID"
	// HeaderUserID carries the caller's identity. Authentication is handled
	// upstream; the API trusts this header.
	HeaderUserID = "X-User-ID"
	// AnonymousUser is used when no identity was supplied.
	AnonymousUser = "anonymous"

	loggerKey         = "logger"
	maxQueryLogLength = 2048
	maxUserIDLength   = 128
)

// RequestID propagates the caller's X-Request-ID or generates a UUID, stores
// it under "requestID" and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Identity stores the X-User-ID header value under UserIDKey. Missing or
// oversized values resolve to AnonymousUser.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" || len(uid) > maxUserIDLength {
			uid = AnonymousUser
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// UserID returns the caller resolved by Identity, falling back to the
// X-User-ID header and then AnonymousUser.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if h := strings.TrimSpace(c.GetHeader(HeaderUserID)); h != "" && len(h) <= maxUserIDLength {
		return h
	}
	return AnonymousUser
}

// RequestIDFrom returns the correlation id stored by RequestID, if any.
func RequestIDFrom(c *gin.Context) string {
	return asString(ctxValue(c, requestIDKey))
}

// Recovery logs panics with their stack and answers 500 with the standard
// error envelope unless a response was already started.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by RedactingLogger,
// or the global logger when none is present. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok && lg != nil {
			return lg
		}
	}
	l := log.Logger
	return &l
}

func ctxValue(c *gin.Context, key string) any {
	v, _ := c.Get(key)
	return v
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate caps s at max bytes; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sharadkumardubey/billify-trip-generator/internal/auth"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

type contextKey string

const (
	// RequestIDKey stores the request ID on the request context.
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"

	sessionKey = "billify.session"
)

// RequestIDFrom returns the request ID carried by ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(string(RequestIDKey), id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), RequestIDKey, id))
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *logging.LoggerV2) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logging.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": RequestIDFrom(c.Request.Context()),
		}
		if sess, ok := SessionFrom(c); ok {
			fields["user_id"] = sess.UserID
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("Request failed", fields)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields)
		default:
			logger.Info("Request handled", fields)
		}
	}
}

// Metrics records request counts and latency by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

// SessionResolver resolves a bearer token to a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// RequireSession rejects requests without a valid bearer token and makes
// the session available through SessionFrom.
func RequireSession(resolver SessionResolver, logger *logging.LoggerV2) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c, "missing bearer token")
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, errors.ErrUnauthenticated) {
				abortUnauthenticated(c, "session is invalid or expired")
				return
			}
			logger.Error("Failed to resolve session", logging.Fields{
				"request_id": RequestIDFrom(c.Request.Context()),
				"error":      err.Error(),
			})
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session set by RequireSession.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok && sess != nil
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     msg,
		"next_step": models.NextStepSignIn,
	})
}

// SecurityHeaders sets conservative response headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

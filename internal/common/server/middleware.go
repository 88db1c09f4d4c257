package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/motormarket/motormarket/internal/common/auth"
	"github.com/motormarket/motormarket/internal/common/config"
	"github.com/motormarket/motormarket/internal/common/logger"
	"github.com/motormarket/motormarket/internal/common/metrics"
	"github.com/motormarket/motormarket/internal/common/middleware"
)

const authInfoKey = "motormarket/authInfo"

// AuthInfo is the minimal identity extracted from the JWT.
type AuthInfo struct {
	Subject string   // user ID
	TokenID string   // jti, keys the admin session tracker
	Roles   []string // RBAC roles
}

// HasRole reports whether the identity carries role.
func (a AuthInfo) HasRole(role string) bool {
	role = strings.TrimSpace(strings.ToLower(role))
	for _, r := range a.Roles {
		if strings.TrimSpace(strings.ToLower(r)) == role {
			return true
		}
	}
	return false
}

// AuthFromContext pulls the identity set by JWTAuth.
func AuthFromContext(c *gin.Context) (AuthInfo, bool) {
	v, ok := c.Get(authInfoKey)
	if !ok {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// SetAuthInfo injects an identity. Exposed for handler tests.
func SetAuthInfo(c *gin.Context, ai AuthInfo) {
	c.Set(authInfoKey, ai)
}

// Recovery keeps a panic from taking the process down and logs the stack.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Errorf("panic in http route=%s err=%v stack=%s", c.FullPath(), r, string(debug.Stack()))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"code": "INTERNAL", "message": "internal error"},
				})
			}
		}()
		c.Next()
	}
}

// AccessLog records method/route/status/latency per request.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cost := time.Since(start)

		if log != nil {
			fields := map[string]interface{}{
				"method": c.Request.Method,
				"route":  c.FullPath(),
				"status": c.Writer.Status(),
				"cost":   cost.String(),
				"ip":     c.ClientIP(),
			}
			if c.Writer.Status() >= http.StatusInternalServerError {
				log.WithFields(fields).Warn("http request failed")
			} else {
				log.WithFields(fields).Info("http request ok")
			}
		}
	}
}

// Metrics feeds the prometheus request vectors.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, route,
		).Observe(time.Since(start).Seconds())
	}
}

// Tracing is a minimal OpenTracing server middleware:
// - extract a parent span context from request headers when present
// - start a server span and put it on the request context for handlers
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()

		var parent opentracing.SpanContext
		if sc, err := tracer.Extract(opentracing.HTTPHeaders,
			opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			parent = sc
		}

		operation := fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())

		var span opentracing.Span
		if parent != nil {
			span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
		} else {
			span = tracer.StartSpan(operation)
		}
		defer span.Finish()

		ext.SpanKindRPCServer.Set(span)
		ext.Component.Set(span, "http")
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		if serviceName != "" {
			span.SetTag("service", serviceName)
		}

		c.Request = c.Request.WithContext(
			opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
	}
}

// JWTAuth verifies `Authorization: Bearer <token>` and stores the identity
// on the context. Requests without a valid token are rejected.
func JWTAuth(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			if log != nil {
				log.Warn("auth enabled but jwt_secret is empty")
			}
			unauthorized(c, "auth not configured")
			return
		}

		raw := c.GetHeader("Authorization")
		if raw == "" {
			unauthorized(c, "missing authorization")
			return
		}

		tokenStr := strings.TrimSpace(raw)
		if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
		}
		if tokenStr == "" {
			unauthorized(c, "invalid authorization")
			return
		}

		claims, err := auth.ParseAccessToken(cfg, tokenStr)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		SetAuthInfo(c, AuthInfo{
			Subject: claims.Subject,
			TokenID: claims.ID,
			Roles:   claims.Roles,
		})
		c.Next()
	}
}

// RequireRoles passes only identities holding at least one of the roles.
// Mount after JWTAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ai, ok := AuthFromContext(c)
		if !ok {
			unauthorized(c, "missing auth context")
			return
		}
		for _, role := range roles {
			if ai.HasRole(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{"code": "PERMISSION_DENIED", "message": "permission denied"},
		})
	}
}

// RateLimit gates requests per client IP through a shared PerKeyLimiter.
func RateLimit(limiter *middleware.PerKeyLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "RATE_LIMITED", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "UNAUTHENTICATED", "message": msg},
	})
}

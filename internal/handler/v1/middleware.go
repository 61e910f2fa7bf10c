package v1

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	claimsKey       = "claims"
)

type TokenValidator interface {
	ValidateAccessToken(token string) (*domain.Claims, error)
}

// RequestID reuses a caller supplied X-Request-ID or mints one, and puts
// it with the client address on the request context for audit entries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(service.WithRequestMeta(c.Request.Context(), c.ClientIP(), id))
		c.Next()
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if claims := callerClaims(c); claims != nil {
			fields = append(fields, zap.String("user_id", claims.UserID.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlightGauge.Inc()
		defer m.InFlightGauge.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		_, ok := allowed[origin]
		if !ok && !allowAll {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Expose-Headers", requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP and forgets clients
// idle for longer than idleTTL.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(cfg config.RateLimitConfig) *ipRateLimiter {
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := newIPRateLimiter(cfg)
	return rateLimitWith(limiter)
}

func rateLimitWith(limiter *ipRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}

func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := callerClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})
	}
}

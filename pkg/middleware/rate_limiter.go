package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
)

// RateLimiterOptions configures the per-client limiter used on the public
// submission routes.
type RateLimiterOptions struct {
	Limit rate.Limit
	Burst int
	// ExpiryDuration defines how long idle client state is kept.
	ExpiryDuration time.Duration
	// KeyFunc extracts the limiting key from a request.
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimiterOptions keys on the caller when authenticated and the
// client IP otherwise, so repeat submitters cannot dodge the limit by
// logging out.
func DefaultRateLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		Limit:          5,
		Burst:          10,
		ExpiryDuration: time.Hour,
		KeyFunc: func(c *gin.Context) string {
			if caller, ok := CallerFrom(c); ok {
				return "user:" + caller.UserID
			}
			return "ip:" + c.ClientIP()
		},
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements rate limiting middleware for gin.
type RateLimiter struct {
	mu      sync.Mutex
	options RateLimiterOptions
	clients map[string]*client
	logger  *logger.Logger
}

// NewRateLimiter builds a limiter. Zero fields in the given options fall
// back to the defaults, so callers can set just the limit and burst.
func NewRateLimiter(logger *logger.Logger, options ...RateLimiterOptions) *RateLimiter {
	opts := DefaultRateLimiterOptions()
	if len(options) > 0 {
		given := options[0]
		if given.Limit > 0 {
			opts.Limit = given.Limit
		}
		if given.Burst > 0 {
			opts.Burst = given.Burst
		}
		if given.ExpiryDuration > 0 {
			opts.ExpiryDuration = given.ExpiryDuration
		}
		if given.KeyFunc != nil {
			opts.KeyFunc = given.KeyFunc
		}
	}
	return &RateLimiter{
		options: opts,
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Middleware returns the gin handler.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	go r.cleanup()

	return func(c *gin.Context) {
		key := r.options.KeyFunc(c)
		limiter := r.getLimiter(key)

		if !limiter.Allow() {
			r.logger.Warn("Rate limit exceeded",
				"client", key,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			c.Error(apperrors.NewError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later."))
			c.Header("Retry-After", "1")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.clients[key]
	if !exists {
		limiter := rate.NewLimiter(r.options.Limit, r.options.Burst)
		r.clients[key] = &client{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (r *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)

		r.mu.Lock()
		for k, v := range r.clients {
			if time.Since(v.lastSeen) > r.options.ExpiryDuration {
				delete(r.clients, k)
			}
		}
		r.mu.Unlock()
	}
}

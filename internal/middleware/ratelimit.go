package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tuckshop/backend/internal/apperrors"
	"github.com/tuckshop/backend/internal/respond"
	"go.uber.org/zap"
)

// RateLimiter counts requests per client IP in fixed Redis windows. With no
// Redis client it lets everything through.
type RateLimiter struct {
	redis  *redis.Client
	scope  string
	max    int
	window time.Duration
	logger *zap.Logger
}

func NewRateLimiter(client *redis.Client, scope string, max int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  client,
		scope:  scope,
		max:    max,
		window: window,
		logger: logger.Named("ratelimit"),
	}
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l.redis == nil || l.max <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", l.scope, clientIP(r))

		pipe := l.redis.Pipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			l.logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > int64(l.max) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			respond.Error(w, nil, apperrors.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/niklvrr/TicketBoard/internal/transport/handler"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
	"go.uber.org/zap"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit ограничивает запросы по адресу клиента.
// Адрес берётся из RemoteAddr, который chi RealIP уже заменил на X-Forwarded-For / X-Real-IP.
func RateLimit(limiter RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ip == "" {
				handler.RespondError(w, service.ErrMissingIP)
				return
			}

			allowed, retryAfter, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("rate limiter failed", zap.String("ip", ip), zap.Error(err))
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				handler.RespondError(w, service.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIP кладёт адрес без порта
		return r.RemoteAddr
	}
	return host
}

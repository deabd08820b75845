package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/transport/handler"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Authenticate требует заголовок Authorization: Bearer <token>
func Authenticate(auth Authenticator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return authenticate(auth, logger, bearerToken)
}

// AuthenticateStream дополнительно принимает ?token=, EventSource в браузере не умеет заголовки
func AuthenticateStream(auth Authenticator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return authenticate(auth, logger, func(r *http.Request) string {
		if token := bearerToken(r); token != "" {
			return token
		}
		return r.URL.Query().Get("token")
	})
}

func authenticate(auth Authenticator, logger *zap.Logger, extract func(*http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), extract(r))
			if err != nil {
				logger.Debug("authentication failed",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				handler.RespondError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(handler.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

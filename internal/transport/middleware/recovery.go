package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/niklvrr/TicketBoard/internal/transport/handler"
	"go.uber.org/zap"
)

// Recovery обрабатывает паники и предотвращает падение сервера
func Recovery(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						zap.Any("error", err),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					handler.WriteError(w, http.StatusInternalServerError, handler.ErrorResponse{
						Error: handler.ErrorDetail{
							Code:    "INTERNAL_ERROR",
							Message: "internal server error",
						},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
)

// maxBodySize лимит на JSON тело запроса
const maxBodySize = 1 << 20

var errMalformedBody = &service.DomainError{
	Code:    service.CodeInvalidInput,
	Message: "Invalid request body",
}

type userCtxKey struct{}

// WithUser кладёт аутентифицированного пользователя в контекст запроса
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*domain.User)
	return user, ok && user != nil
}

// actorId id пользователя из контекста, пустая строка если запрос не прошёл аутентификацию
func actorId(r *http.Request) string {
	if user, ok := UserFromContext(r.Context()); ok {
		return user.Id
	}
	return ""
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, response.MessageResponse{Message: message})
}

// decodeJSON пустое тело допустимо, тогда dst остаётся нулевым
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.WrapError(&service.DomainError{
				Code:    service.CodePayloadTooLarge,
				Message: "Request body too large",
			}, err)
		}
		return service.WrapError(errMalformedBody, err)
	}
	return nil
}

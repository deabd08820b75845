package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/niklvrr/TicketBoard/internal/usecase/service"
)

const (
	codeInternal = "INTERNAL_ERROR"
	codeTimeout  = "TIMEOUT"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleError маппит доменные ошибки на HTTP коды и ErrorResponse
func HandleError(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusOK, ErrorResponse{}
	}

	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		statusCode := mapErrorCodeToHTTPStatus(domainErr.Code)
		return statusCode, ErrorResponse{
			Error: ErrorDetail{
				Code:    domainErr.Code,
				Message: domainErr.Message,
			},
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: ErrorDetail{
				Code:    codeTimeout,
				Message: "request timed out",
			},
		}
	}

	// Неизвестная ошибка - возвращаем 500
	return http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    codeInternal,
			Message: "internal server error",
		},
	}
}

func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case service.CodeInvalidInput,
		service.CodeUserExists,
		service.CodeColumnLimit,
		service.CodeColumnNotEmpty,
		service.CodeLastColumn,
		service.CodeNotMember:
		return http.StatusBadRequest // 400
	case service.CodeInvalidCredentials, service.CodeUnauthorized:
		return http.StatusUnauthorized // 401
	case service.CodeForbidden, service.CodeInvalidToken:
		return http.StatusForbidden // 403
	case service.CodeNotFound:
		return http.StatusNotFound // 404
	case service.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge // 413
	case service.CodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteError отправляет ErrorResponse клиенту
func WriteError(w http.ResponseWriter, statusCode int, errResp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errResp)
}

// RespondError маппит ошибку и сразу пишет ответ
func RespondError(w http.ResponseWriter, err error) {
	statusCode, errResp := HandleError(err)
	WriteError(w, statusCode, errResp)
}

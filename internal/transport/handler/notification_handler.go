package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"go.uber.org/zap"
)

type NotificationService interface {
	List(ctx context.Context, userId string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userId, notificationId string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userId string) (*response.MarkAllReadResponse, error)
}

type NotificationHandler struct {
	svc NotificationService
	log *zap.Logger
}

func NewNotificationHandler(svc NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
		log: log,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.List(r.Context(), actorId(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), actorId(r), chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.MarkAllRead(r.Context(), actorId(r))
	if err != nil {
		h.log.Error("failed to mark notifications read", zap.Error(err))
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

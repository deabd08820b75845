package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"go.uber.org/zap"
)

type TicketService interface {
	CreateTicket(ctx context.Context, req *request.CreateTicketRequest) (*domain.Ticket, error)
	ListTickets(ctx context.Context, actorId, boardId string) ([]*domain.Ticket, error)
	GetTicket(ctx context.Context, actorId, ticketId string) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, req *request.UpdateTicketRequest) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, actorId, ticketId string) error
	SearchTickets(ctx context.Context, req *request.SearchTicketsRequest) ([]*domain.Ticket, error)
	AddComment(ctx context.Context, req *request.CommentRequest) (*domain.Comment, error)
	EditComment(ctx context.Context, req *request.CommentRequest) (*domain.Comment, error)
	DeleteComment(ctx context.Context, req *request.CommentRequest) error
	AddWatcher(ctx context.Context, req *request.WatcherRequest) (*response.WatchersResponse, error)
	RemoveWatcher(ctx context.Context, req *request.WatcherRequest) (*response.WatchersResponse, error)
}

type TicketHandler struct {
	svc TicketService
	log *zap.Logger
}

func NewTicketHandler(svc TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		svc: svc,
		log: log,
	}
}

func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	h.log.Info("createTicket request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.CreateTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)

	ticket, err := h.svc.CreateTicket(r.Context(), &req)
	if err != nil {
		h.log.Warn("failed to create ticket", zap.String("board_id", req.BoardId), zap.Error(err))
		RespondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.ListTickets(r.Context(), actorId(r), chi.URLParam(r, "boardId"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.svc.GetTicket(r.Context(), actorId(r), chi.URLParam(r, "ticketId"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	h.log.Info("updateTicket request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.UpdateTicketRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)
	req.TicketId = chi.URLParam(r, "ticketId")

	ticket, err := h.svc.UpdateTicket(r.Context(), &req)
	if err != nil {
		h.log.Warn("failed to update ticket", zap.String("ticket_id", req.TicketId), zap.Error(err))
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	h.log.Info("deleteTicket request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	if err := h.svc.DeleteTicket(r.Context(), actorId(r), chi.URLParam(r, "ticketId")); err != nil {
		RespondError(w, err)
		return
	}
	writeMessage(w, "Ticket deleted successfully")
}

// SearchTickets GET /api/tickets/search?q=...&boardId=...
func (h *TicketHandler) SearchTickets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchTicketsRequest{
		ActorId: actorId(r),
		Query:   query.Get("q"),
		BoardId: query.Get("boardId"),
	}

	tickets, err := h.svc.SearchTickets(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *TicketHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	req, ok := h.commentRequest(w, r)
	if !ok {
		return
	}

	comment, err := h.svc.AddComment(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *TicketHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	req, ok := h.commentRequest(w, r)
	if !ok {
		return
	}

	comment, err := h.svc.EditComment(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *TicketHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	req := &request.CommentRequest{
		ActorId:   actorId(r),
		TicketId:  chi.URLParam(r, "ticketId"),
		CommentId: chi.URLParam(r, "commentId"),
	}

	if err := h.svc.DeleteComment(r.Context(), req); err != nil {
		RespondError(w, err)
		return
	}
	writeMessage(w, "Comment deleted")
}

func (h *TicketHandler) AddWatcher(w http.ResponseWriter, r *http.Request) {
	req, ok := h.watcherRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.AddWatcher(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TicketHandler) RemoveWatcher(w http.ResponseWriter, r *http.Request) {
	req, ok := h.watcherRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.RemoveWatcher(r.Context(), req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TicketHandler) commentRequest(w http.ResponseWriter, r *http.Request) (*request.CommentRequest, bool) {
	var req request.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return nil, false
	}
	req.ActorId = actorId(r)
	req.TicketId = chi.URLParam(r, "ticketId")
	req.CommentId = chi.URLParam(r, "commentId")
	return &req, true
}

// watcherRequest тело необязательно: без userId действие применяется к актору
func (h *TicketHandler) watcherRequest(w http.ResponseWriter, r *http.Request) (*request.WatcherRequest, bool) {
	var req request.WatcherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return nil, false
	}
	req.ActorId = actorId(r)
	req.TicketId = chi.URLParam(r, "ticketId")
	return &req, true
}

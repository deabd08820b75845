package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"go.uber.org/zap"
)

type BoardService interface {
	CreateBoard(ctx context.Context, req *request.CreateBoardRequest) (*domain.Board, error)
	ListBoards(ctx context.Context, actorId string) ([]*domain.Board, error)
	GetBoard(ctx context.Context, actorId, boardId string) (*domain.Board, error)
	UpdateBoard(ctx context.Context, req *request.UpdateBoardRequest) (*domain.Board, error)
	DeleteBoard(ctx context.Context, actorId, boardId string) error
	AddMember(ctx context.Context, req *request.AddMemberRequest) (*domain.Board, error)
	CreateColumn(ctx context.Context, req *request.CreateColumnRequest) (*domain.Column, error)
	UpdateColumn(ctx context.Context, req *request.UpdateColumnRequest) (*domain.Column, error)
	DeleteColumn(ctx context.Context, actorId, boardId, columnId string) error
	ReorderColumns(ctx context.Context, req *request.ReorderColumnsRequest) (*domain.Board, error)
}

type BoardHandler struct {
	svc BoardService
	log *zap.Logger
}

func NewBoardHandler(svc BoardService, log *zap.Logger) *BoardHandler {
	return &BoardHandler{
		svc: svc,
		log: log,
	}
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	h.log.Info("createBoard request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.CreateBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)

	board, err := h.svc.CreateBoard(r.Context(), &req)
	if err != nil {
		h.log.Error("failed to create board", zap.Error(err))
		RespondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, board)
}

func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.svc.ListBoards(r.Context(), actorId(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.GetBoard(r.Context(), actorId(r), chi.URLParam(r, "boardId"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	h.log.Info("updateBoard request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.UpdateBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)
	req.BoardId = chi.URLParam(r, "boardId")

	board, err := h.svc.UpdateBoard(r.Context(), &req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	h.log.Info("deleteBoard request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	if err := h.svc.DeleteBoard(r.Context(), actorId(r), chi.URLParam(r, "boardId")); err != nil {
		RespondError(w, err)
		return
	}
	writeMessage(w, "Board deleted successfully")
}

func (h *BoardHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	h.log.Info("addMember request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.AddMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)
	req.BoardId = chi.URLParam(r, "boardId")

	board, err := h.svc.AddMember(r.Context(), &req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	h.log.Info("createColumn request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.CreateColumnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)
	req.BoardId = chi.URLParam(r, "boardId")

	column, err := h.svc.CreateColumn(r.Context(), &req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, column)
}

func (h *BoardHandler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateColumnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)
	req.BoardId = chi.URLParam(r, "boardId")
	req.ColumnId = chi.URLParam(r, "columnId")

	column, err := h.svc.UpdateColumn(r.Context(), &req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, column)
}

func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteColumn(r.Context(), actorId(r), chi.URLParam(r, "boardId"), chi.URLParam(r, "columnId"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeMessage(w, "Column deleted successfully")
}

func (h *BoardHandler) ReorderColumns(w http.ResponseWriter, r *http.Request) {
	var req request.ReorderColumnsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}
	req.ActorId = actorId(r)
	req.BoardId = chi.URLParam(r, "boardId")

	if _, err := h.svc.ReorderColumns(r.Context(), &req); err != nil {
		RespondError(w, err)
		return
	}
	writeMessage(w, "Columns reordered successfully")
}

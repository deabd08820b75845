package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/repository"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"go.uber.org/zap"
)

const searchLimit = 50

var (
	createTicketError  = errors.New("create ticket error")
	listTicketsError   = errors.New("list tickets error")
	getTicketError     = errors.New("get ticket error")
	updateTicketError  = errors.New("update ticket error")
	deleteTicketError  = errors.New("delete ticket error")
	searchTicketsError = errors.New("search tickets error")
	addCommentError    = errors.New("add comment error")
	editCommentError   = errors.New("edit comment error")
	deleteCommentError = errors.New("delete comment error")
	watcherError       = errors.New("update watchers error")
)

type TicketRepository interface {
	Create(ctx context.Context, d *dto.CreateTicketDTO) (*domain.Ticket, error)
	GetForMember(ctx context.Context, ticketId, userId string) (*domain.Ticket, error)
	ListByBoard(ctx context.Context, boardId string) ([]*domain.Ticket, error)
	Update(ctx context.Context, d *dto.UpdateTicketDTO) (*domain.Ticket, error)
	Delete(ctx context.Context, ticketId string) error
	Search(ctx context.Context, d *dto.SearchTicketsDTO) ([]*domain.Ticket, error)
	AddWatcher(ctx context.Context, ticketId, userId string) ([]*domain.User, error)
	RemoveWatcher(ctx context.Context, ticketId, userId string) ([]*domain.User, error)
	ListHistory(ctx context.Context, ticketId string) ([]*domain.TicketHistory, error)
}

type CommentRepository interface {
	Create(ctx context.Context, d *dto.CreateCommentDTO) (*domain.Comment, error)
	Update(ctx context.Context, d *dto.UpdateCommentDTO) (*domain.Comment, error)
	Delete(ctx context.Context, d *dto.DeleteCommentDTO) error
	GetById(ctx context.Context, commentId string) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketId string) ([]*domain.Comment, error)
}

type BoardReader interface {
	GetForMember(ctx context.Context, boardId, userId string) (*domain.Board, error)
}

type Notifier interface {
	FanOut(ctx context.Context, ticket *domain.Ticket, actor *domain.User, event string, payload any)
	Broadcast(ctx context.Context, userIds []string, event string, payload any)
}

type TicketService struct {
	repo     TicketRepository
	comments CommentRepository
	boards   BoardReader
	notifier Notifier
	log      *zap.Logger
}

func NewTicketService(
	repo TicketRepository,
	comments CommentRepository,
	boards BoardReader,
	notifier Notifier,
	log *zap.Logger,
) *TicketService {
	return &TicketService{
		repo:     repo,
		comments: comments,
		boards:   boards,
		notifier: notifier,
		log:      log,
	}
}

func (s *TicketService) CreateTicket(ctx context.Context, req *request.CreateTicketRequest) (*domain.Ticket, error) {
	s.log.Info("createTicket request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("board_id", req.BoardId),
	)

	// Валидация
	title := sanitizeText(req.Title)
	if title == "" {
		return nil, invalidInput("Title is required")
	}
	priority := domain.Priority(req.Priority)
	if !priority.Valid() {
		return nil, invalidInput("Invalid priority")
	}
	if req.BoardId == "" {
		return nil, invalidInput("Board ID is required")
	}

	board, err := s.memberBoard(ctx, req.BoardId, req.ActorId, createTicketError)
	if err != nil {
		return nil, err
	}

	var assigneeId *string
	if req.AssigneeId != nil && *req.AssigneeId != "" {
		id, ok := parseID(*req.AssigneeId)
		if !ok || !board.HasMember(id) {
			return nil, ErrAssigneeNotMember
		}
		assigneeId = &id
	}

	// Тикет всегда стартует в первой колонке
	if len(board.Columns) == 0 {
		return nil, ErrNoColumns
	}
	column := board.Columns[0]
	actor := board.Member(req.ActorId)

	// Собираем dto
	d := &dto.CreateTicketDTO{
		Id:          uuid.NewString(),
		Title:       title,
		Description: sanitizeText(req.Description),
		Priority:    priority,
		Status:      column.Name,
		BoardId:     board.Id,
		ColumnId:    column.Id,
		AssigneeId:  assigneeId,
		CreatorId:   req.ActorId,
		History: []*dto.HistoryDTO{
			newHistory(domain.HistoryStatus, actor, nil, strPtr(column.Name)),
			newHistory(domain.HistoryCreated, actor, nil, strPtr(title)),
		},
	}

	// Запрос в бд
	ticket, err := s.repo.Create(ctx, d)
	if err != nil {
		s.log.Error("failed to create ticket", zap.String("board_id", board.Id), zap.Error(err))
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("%w: %w", createTicketError, err)
	}

	s.log.Info("ticket created", zap.String("ticket_id", ticket.Id), zap.String("board_id", board.Id))
	return ticket, nil
}

func (s *TicketService) ListTickets(ctx context.Context, actorId, boardId string) ([]*domain.Ticket, error) {
	board, err := s.memberBoard(ctx, boardId, actorId, listTicketsError)
	if err != nil {
		return nil, err
	}

	tickets, err := s.repo.ListByBoard(ctx, board.Id)
	if err != nil {
		s.log.Error("failed to list tickets", zap.String("board_id", board.Id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", listTicketsError, err)
	}
	return tickets, nil
}

func (s *TicketService) GetTicket(ctx context.Context, actorId, ticketId string) (*domain.Ticket, error) {
	ticket, err := s.memberTicket(ctx, ticketId, actorId, getTicketError)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.Id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", getTicketError, err)
	}
	history, err := s.repo.ListHistory(ctx, ticket.Id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", getTicketError, err)
	}

	ticket.Comments = comments
	ticket.History = history
	return ticket, nil
}

func (s *TicketService) UpdateTicket(ctx context.Context, req *request.UpdateTicketRequest) (*domain.Ticket, error) {
	s.log.Info("updateTicket request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("ticket_id", req.TicketId),
	)

	ticket, board, err := s.ticketWithBoard(ctx, req.TicketId, req.ActorId, updateTicketError)
	if err != nil {
		return nil, err
	}
	actor := board.Member(req.ActorId)

	// Патчим только присланные поля, история пишется по фактическим изменениям
	d := &dto.UpdateTicketDTO{TicketId: ticket.Id}
	changed := false

	if req.Title != nil {
		title := sanitizeText(*req.Title)
		if title == "" {
			return nil, invalidInput("Title is required")
		}
		if title != ticket.Title {
			d.Title = &title
			d.History = append(d.History, newHistory(domain.HistoryTitle, actor, strPtr(ticket.Title), strPtr(title)))
			changed = true
		}
	}

	if req.Description != nil {
		description := sanitizeText(*req.Description)
		if description != ticket.Description {
			d.Description = &description
			changed = true
		}
	}

	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, invalidInput("Invalid priority")
		}
		if priority != ticket.Priority {
			d.Priority = &priority
			d.History = append(d.History, newHistory(domain.HistoryPriority, actor,
				strPtr(string(ticket.Priority)), strPtr(string(priority))))
			changed = true
		}
	}

	if req.AssigneeId.Set {
		var assignee *domain.User
		if v := req.AssigneeId.Value; v != nil && *v != "" {
			id, ok := parseID(*v)
			if !ok {
				return nil, ErrAssigneeNotMember
			}
			if assignee = board.Member(id); assignee == nil {
				return nil, ErrAssigneeNotMember
			}
		}

		if !sameAssignee(ticket.AssigneeId, assignee) {
			d.SetAssignee = true
			var oldEmail, newEmail *string
			if ticket.Assignee != nil {
				oldEmail = strPtr(ticket.Assignee.Email)
			}
			if assignee != nil {
				d.AssigneeId = strPtr(assignee.Id)
				newEmail = strPtr(assignee.Email)
			}
			d.History = append(d.History, newHistory(domain.HistoryAssignee, actor, oldEmail, newEmail))
			changed = true
		}
	}

	if req.ColumnId != nil {
		id, ok := parseID(*req.ColumnId)
		if !ok {
			return nil, ErrForeignColumn
		}
		column := board.Column(id)
		if column == nil {
			return nil, ErrForeignColumn
		}
		if column.Id != ticket.ColumnId {
			oldStatus := ticket.Status
			if current := board.Column(ticket.ColumnId); current != nil {
				oldStatus = current.Name
			}
			d.ColumnId = strPtr(column.Id)
			d.Status = strPtr(column.Name)
			d.History = append(d.History, newHistory(domain.HistoryStatus, actor, strPtr(oldStatus), strPtr(column.Name)))
			changed = true
		}
	}

	if !changed {
		return ticket, nil
	}

	// Запрос в бд
	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		s.log.Error("failed to update ticket", zap.String("ticket_id", ticket.Id), zap.Error(err))
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, WrapError(ErrTicketNotFound, err)
		case errors.Is(err, repository.ErrInvalidInput):
			return nil, WrapError(ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("%w: %w", updateTicketError, err)
	}

	s.log.Info("ticket updated",
		zap.String("ticket_id", updated.Id),
		zap.Int("history_entries", len(d.History)),
	)

	s.notifier.FanOut(ctx, updated, actor, domain.EventTicketUpdated, updated)
	return updated, nil
}

func (s *TicketService) DeleteTicket(ctx context.Context, actorId, ticketId string) error {
	s.log.Info("deleteTicket request accepted",
		zap.String("actor_id", actorId),
		zap.String("ticket_id", ticketId),
	)

	ticket, err := s.memberTicket(ctx, ticketId, actorId, deleteTicketError)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, ticket.Id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return WrapError(ErrTicketNotFound, err)
		}
		return fmt.Errorf("%w: %w", deleteTicketError, err)
	}

	s.log.Info("ticket deleted", zap.String("ticket_id", ticket.Id))
	return nil
}

func (s *TicketService) SearchTickets(ctx context.Context, req *request.SearchTicketsRequest) ([]*domain.Ticket, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, invalidInput("Search query is required")
	}

	d := &dto.SearchTicketsDTO{
		UserId: req.ActorId,
		Query:  query,
		Limit:  searchLimit,
	}
	if req.BoardId != "" {
		id, ok := parseID(req.BoardId)
		if !ok {
			return nil, ErrBoardNotFound
		}
		d.BoardId = &id
	}

	tickets, err := s.repo.Search(ctx, d)
	if err != nil {
		s.log.Error("failed to search tickets", zap.String("actor_id", req.ActorId), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", searchTicketsError, err)
	}
	return tickets, nil
}

func (s *TicketService) AddComment(ctx context.Context, req *request.CommentRequest) (*domain.Comment, error) {
	s.log.Info("addComment request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("ticket_id", req.TicketId),
	)

	content := sanitizeText(req.Content)
	if content == "" {
		return nil, invalidInput("Comment content is required")
	}

	ticket, board, err := s.ticketWithBoard(ctx, req.TicketId, req.ActorId, addCommentError)
	if err != nil {
		return nil, err
	}
	actor := board.Member(req.ActorId)

	commentId := uuid.NewString()
	history := newHistory(domain.HistoryCommentAdded, actor, nil, strPtr(content))
	history.CommentId = strPtr(commentId)

	comment, err := s.comments.Create(ctx, &dto.CreateCommentDTO{
		Id:       commentId,
		TicketId: ticket.Id,
		UserId:   req.ActorId,
		Content:  content,
		History:  history,
	})
	if err != nil {
		s.log.Error("failed to add comment", zap.String("ticket_id", ticket.Id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", addCommentError, err)
	}

	s.log.Info("comment added", zap.String("comment_id", comment.Id), zap.String("ticket_id", ticket.Id))

	s.notifier.FanOut(ctx, ticket, actor, domain.EventNewComment, comment)
	return comment, nil
}

func (s *TicketService) EditComment(ctx context.Context, req *request.CommentRequest) (*domain.Comment, error) {
	s.log.Info("editComment request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("comment_id", req.CommentId),
	)

	content := sanitizeText(req.Content)
	if content == "" {
		return nil, invalidInput("Comment content is required")
	}

	comment, actor, err := s.ownComment(ctx, req, editCommentError)
	if err != nil {
		return nil, err
	}

	history := newHistory(domain.HistoryCommentEdited, actor, strPtr(comment.Content), strPtr(content))
	history.CommentId = strPtr(comment.Id)

	updated, err := s.comments.Update(ctx, &dto.UpdateCommentDTO{
		CommentId: comment.Id,
		Content:   content,
		History:   history,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrCommentNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", editCommentError, err)
	}

	s.log.Info("comment edited", zap.String("comment_id", updated.Id))
	return updated, nil
}

func (s *TicketService) DeleteComment(ctx context.Context, req *request.CommentRequest) error {
	s.log.Info("deleteComment request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("comment_id", req.CommentId),
	)

	comment, actor, err := s.ownComment(ctx, req, deleteCommentError)
	if err != nil {
		return err
	}

	err = s.comments.Delete(ctx, &dto.DeleteCommentDTO{
		CommentId: comment.Id,
		History:   newHistory(domain.HistoryCommentDeleted, actor, strPtr(comment.Content), nil),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return WrapError(ErrCommentNotFound, err)
		}
		return fmt.Errorf("%w: %w", deleteCommentError, err)
	}

	s.log.Info("comment deleted", zap.String("comment_id", comment.Id))
	return nil
}

func (s *TicketService) AddWatcher(ctx context.Context, req *request.WatcherRequest) (*response.WatchersResponse, error) {
	ticket, targetId, err := s.watcherTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	watchers, err := s.repo.AddWatcher(ctx, ticket.Id, targetId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", watcherError, err)
	}

	s.log.Info("watcher added", zap.String("ticket_id", ticket.Id), zap.String("user_id", targetId))

	resp := response.NewWatchersResponse(ticket.Id, watchers)
	s.notifier.Broadcast(ctx, userIds(watchers), domain.EventWatchersUpdated, resp)
	return resp, nil
}

func (s *TicketService) RemoveWatcher(ctx context.Context, req *request.WatcherRequest) (*response.WatchersResponse, error) {
	ticket, targetId, err := s.watcherTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	watchers, err := s.repo.RemoveWatcher(ctx, ticket.Id, targetId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", watcherError, err)
	}

	s.log.Info("watcher removed", zap.String("ticket_id", ticket.Id), zap.String("user_id", targetId))

	// Удалённый наблюдатель тоже получает новый список
	resp := response.NewWatchersResponse(ticket.Id, watchers)
	s.notifier.Broadcast(ctx, append(userIds(watchers), targetId), domain.EventWatchersUpdated, resp)
	return resp, nil
}

func (s *TicketService) watcherTarget(ctx context.Context, req *request.WatcherRequest) (*domain.Ticket, string, error) {
	ticket, board, err := s.ticketWithBoard(ctx, req.TicketId, req.ActorId, watcherError)
	if err != nil {
		return nil, "", err
	}

	// По умолчанию действие над самим актором
	targetId := req.ActorId
	if req.UserId != "" {
		id, ok := parseID(req.UserId)
		if !ok {
			return nil, "", ErrWatcherNotMember
		}
		targetId = id
	}
	if !board.HasMember(targetId) {
		return nil, "", ErrWatcherNotMember
	}
	return ticket, targetId, nil
}

// ownComment проверяет, что комментарий относится к тикету и принадлежит актору
func (s *TicketService) ownComment(ctx context.Context, req *request.CommentRequest, opErr error) (*domain.Comment, *domain.User, error) {
	ticket, board, err := s.ticketWithBoard(ctx, req.TicketId, req.ActorId, opErr)
	if err != nil {
		return nil, nil, err
	}

	commentId, ok := parseID(req.CommentId)
	if !ok {
		return nil, nil, ErrCommentNotFound
	}
	comment, err := s.comments.GetById(ctx, commentId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, WrapError(ErrCommentNotFound, err)
		}
		return nil, nil, fmt.Errorf("%w: %w", opErr, err)
	}
	if comment.TicketId != ticket.Id {
		return nil, nil, ErrCommentNotFound
	}
	if comment.UserId != req.ActorId {
		return nil, nil, ErrForbidden
	}
	return comment, board.Member(req.ActorId), nil
}

func (s *TicketService) ticketWithBoard(ctx context.Context, ticketId, actorId string, opErr error) (*domain.Ticket, *domain.Board, error) {
	ticket, err := s.memberTicket(ctx, ticketId, actorId, opErr)
	if err != nil {
		return nil, nil, err
	}

	board, err := s.boards.GetForMember(ctx, ticket.BoardId, actorId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, WrapError(ErrTicketNotFound, err)
		}
		return nil, nil, fmt.Errorf("%w: %w", opErr, err)
	}
	return ticket, board, nil
}

func (s *TicketService) memberTicket(ctx context.Context, ticketId, actorId string, opErr error) (*domain.Ticket, error) {
	id, ok := parseID(ticketId)
	if !ok {
		return nil, ErrTicketNotFound
	}

	ticket, err := s.repo.GetForMember(ctx, id, actorId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrTicketNotFound, err)
		}
		s.log.Error("failed to load ticket", zap.String("ticket_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", opErr, err)
	}
	return ticket, nil
}

func (s *TicketService) memberBoard(ctx context.Context, boardId, actorId string, opErr error) (*domain.Board, error) {
	id, ok := parseID(boardId)
	if !ok {
		return nil, ErrBoardNotFound
	}

	board, err := s.boards.GetForMember(ctx, id, actorId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrBoardNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", opErr, err)
	}
	return board, nil
}

func sameAssignee(current *string, next *domain.User) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	return *current == next.Id
}

func userIds(users []*domain.User) []string {
	ids := make([]string, 0, len(users)+1)
	for _, u := range users {
		ids = append(ids, u.Id)
	}
	return ids
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/repository"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"go.uber.org/zap"
)

var (
	createBoardError    = errors.New("create board error")
	listBoardsError     = errors.New("list boards error")
	getBoardError       = errors.New("get board error")
	updateBoardError    = errors.New("update board error")
	deleteBoardError    = errors.New("delete board error")
	addMemberError      = errors.New("add member error")
	createColumnError   = errors.New("create column error")
	updateColumnError   = errors.New("update column error")
	deleteColumnError   = errors.New("delete column error")
	reorderColumnsError = errors.New("reorder columns error")
)

// Стартовые колонки новой доски
var defaultColumns = []string{"Backlog", "Ready for Dev", "In Development", "In QA", "Done"}

type BoardRepository interface {
	Create(ctx context.Context, d *dto.CreateBoardDTO) (*domain.Board, error)
	ListForMember(ctx context.Context, userId string) ([]*domain.Board, error)
	GetForMember(ctx context.Context, boardId, userId string) (*domain.Board, error)
	Update(ctx context.Context, d *dto.UpdateBoardDTO) (*domain.Board, error)
	Delete(ctx context.Context, boardId string) error
	AddMember(ctx context.Context, boardId, userId string) error
	CreateColumn(ctx context.Context, d *dto.CreateColumnDTO) (*domain.Column, error)
	GetColumn(ctx context.Context, boardId, columnId string) (*domain.Column, error)
	UpdateColumn(ctx context.Context, d *dto.UpdateColumnDTO) (*domain.Column, error)
	DeleteColumn(ctx context.Context, boardId, columnId string) error
	ReorderColumns(ctx context.Context, d *dto.ReorderColumnsDTO) error
}

type BoardTicketLister interface {
	ListByBoard(ctx context.Context, boardId string) ([]*domain.Ticket, error)
}

type UserGetter interface {
	GetById(ctx context.Context, id string) (*domain.User, error)
}

type BoardService struct {
	repo    BoardRepository
	tickets BoardTicketLister
	users   UserGetter
	log     *zap.Logger
}

func NewBoardService(repo BoardRepository, tickets BoardTicketLister, users UserGetter, log *zap.Logger) *BoardService {
	return &BoardService{
		repo:    repo,
		tickets: tickets,
		users:   users,
		log:     log,
	}
}

func (s *BoardService) CreateBoard(ctx context.Context, req *request.CreateBoardRequest) (*domain.Board, error) {
	s.log.Info("createBoard request accepted", zap.String("actor_id", req.ActorId))

	name := sanitizeText(req.Name)
	if name == "" {
		return nil, invalidInput("Board name is required")
	}

	// Собираем dto
	boardId := uuid.NewString()
	columns := make([]*dto.CreateColumnDTO, 0, len(defaultColumns))
	for _, columnName := range defaultColumns {
		columns = append(columns, &dto.CreateColumnDTO{
			Id:      uuid.NewString(),
			BoardId: boardId,
			Name:    columnName,
		})
	}

	// Запрос в бд
	board, err := s.repo.Create(ctx, &dto.CreateBoardDTO{
		Id:          boardId,
		Name:        name,
		Description: sanitizeText(req.Description),
		CreatorId:   req.ActorId,
		Columns:     columns,
	})
	if err != nil {
		s.log.Error("failed to create board", zap.String("actor_id", req.ActorId), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", createBoardError, err)
	}

	s.log.Info("board created", zap.String("board_id", board.Id))
	return board, nil
}

func (s *BoardService) ListBoards(ctx context.Context, actorId string) ([]*domain.Board, error) {
	boards, err := s.repo.ListForMember(ctx, actorId)
	if err != nil {
		s.log.Error("failed to list boards", zap.String("actor_id", actorId), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", listBoardsError, err)
	}
	return boards, nil
}

func (s *BoardService) GetBoard(ctx context.Context, actorId, boardId string) (*domain.Board, error) {
	board, err := s.memberBoard(ctx, boardId, actorId, getBoardError)
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.ListByBoard(ctx, board.Id)
	if err != nil {
		s.log.Error("failed to load board tickets", zap.String("board_id", board.Id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", getBoardError, err)
	}
	board.Tickets = tickets
	return board, nil
}

func (s *BoardService) UpdateBoard(ctx context.Context, req *request.UpdateBoardRequest) (*domain.Board, error) {
	s.log.Info("updateBoard request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("board_id", req.BoardId),
	)

	board, err := s.memberBoard(ctx, req.BoardId, req.ActorId, updateBoardError)
	if err != nil {
		return nil, err
	}

	d := &dto.UpdateBoardDTO{
		BoardId:     board.Id,
		Name:        sanitizeOptional(req.Name),
		Description: sanitizeOptional(req.Description),
	}
	if d.Name != nil && *d.Name == "" {
		return nil, invalidInput("Board name is required")
	}

	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrBoardNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", updateBoardError, err)
	}

	s.log.Info("board updated", zap.String("board_id", updated.Id))
	return updated, nil
}

func (s *BoardService) DeleteBoard(ctx context.Context, actorId, boardId string) error {
	s.log.Info("deleteBoard request accepted",
		zap.String("actor_id", actorId),
		zap.String("board_id", boardId),
	)

	board, err := s.memberBoard(ctx, boardId, actorId, deleteBoardError)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, board.Id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return WrapError(ErrBoardNotFound, err)
		}
		return fmt.Errorf("%w: %w", deleteBoardError, err)
	}

	s.log.Info("board deleted", zap.String("board_id", board.Id))
	return nil
}

func (s *BoardService) AddMember(ctx context.Context, req *request.AddMemberRequest) (*domain.Board, error) {
	s.log.Info("addMember request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("board_id", req.BoardId),
		zap.String("user_id", req.UserId),
	)

	board, err := s.memberBoard(ctx, req.BoardId, req.ActorId, addMemberError)
	if err != nil {
		return nil, err
	}

	userId, ok := parseID(req.UserId)
	if !ok {
		return nil, ErrUserNotFound
	}
	if board.HasMember(userId) {
		return board, nil
	}

	if _, err := s.users.GetById(ctx, userId); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrUserNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", addMemberError, err)
	}

	if err := s.repo.AddMember(ctx, board.Id, userId); err != nil {
		return nil, fmt.Errorf("%w: %w", addMemberError, err)
	}

	s.log.Info("board member added", zap.String("board_id", board.Id), zap.String("user_id", userId))
	return s.memberBoard(ctx, board.Id, req.ActorId, addMemberError)
}

func (s *BoardService) CreateColumn(ctx context.Context, req *request.CreateColumnRequest) (*domain.Column, error) {
	s.log.Info("createColumn request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("board_id", req.BoardId),
	)

	name := sanitizeText(req.Name)
	if name == "" {
		return nil, invalidInput("Column name is required")
	}

	board, err := s.memberBoard(ctx, req.BoardId, req.ActorId, createColumnError)
	if err != nil {
		return nil, err
	}
	if len(board.Columns) >= domain.MaxColumns {
		return nil, ErrColumnLimit
	}

	column, err := s.repo.CreateColumn(ctx, &dto.CreateColumnDTO{
		Id:         uuid.NewString(),
		BoardId:    board.Id,
		Name:       name,
		MaxColumns: domain.MaxColumns,
	})
	if err != nil {
		// Лимит мог быть достигнут параллельным запросом
		if errors.Is(err, repository.ErrColumnLimit) {
			return nil, WrapError(ErrColumnLimit, err)
		}
		return nil, fmt.Errorf("%w: %w", createColumnError, err)
	}

	s.log.Info("column created", zap.String("column_id", column.Id), zap.Int("order", column.Order))
	return column, nil
}

func (s *BoardService) UpdateColumn(ctx context.Context, req *request.UpdateColumnRequest) (*domain.Column, error) {
	s.log.Info("updateColumn request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("board_id", req.BoardId),
		zap.String("column_id", req.ColumnId),
	)

	board, err := s.memberBoard(ctx, req.BoardId, req.ActorId, updateColumnError)
	if err != nil {
		return nil, err
	}

	columnId, ok := parseID(req.ColumnId)
	if !ok || board.Column(columnId) == nil {
		return nil, ErrColumnNotFound
	}

	d := &dto.UpdateColumnDTO{
		BoardId:  board.Id,
		ColumnId: columnId,
		Name:     sanitizeOptional(req.Name),
		Order:    req.Order,
	}
	if d.Name != nil && *d.Name == "" {
		return nil, invalidInput("Column name is required")
	}
	if d.Order != nil && *d.Order < 0 {
		return nil, invalidInput("Column order must not be negative")
	}

	column, err := s.repo.UpdateColumn(ctx, d)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, WrapError(ErrColumnNotFound, err)
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, WrapError(ErrColumnOrderTaken, err)
		}
		return nil, fmt.Errorf("%w: %w", updateColumnError, err)
	}

	s.log.Info("column updated", zap.String("column_id", column.Id))
	return column, nil
}

func (s *BoardService) DeleteColumn(ctx context.Context, actorId, boardId, columnId string) error {
	s.log.Info("deleteColumn request accepted",
		zap.String("actor_id", actorId),
		zap.String("board_id", boardId),
		zap.String("column_id", columnId),
	)

	board, err := s.memberBoard(ctx, boardId, actorId, deleteColumnError)
	if err != nil {
		return err
	}

	id, ok := parseID(columnId)
	if !ok || board.Column(id) == nil {
		return ErrColumnNotFound
	}

	if err := s.repo.DeleteColumn(ctx, board.Id, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return WrapError(ErrColumnNotFound, err)
		case errors.Is(err, repository.ErrColumnNotEmpty):
			return WrapError(ErrColumnNotEmpty, err)
		case errors.Is(err, repository.ErrLastColumn):
			return WrapError(ErrLastColumn, err)
		}
		return fmt.Errorf("%w: %w", deleteColumnError, err)
	}

	s.log.Info("column deleted", zap.String("column_id", id))
	return nil
}

// ReorderColumns принимает полный упорядоченный список колонок доски
func (s *BoardService) ReorderColumns(ctx context.Context, req *request.ReorderColumnsRequest) (*domain.Board, error) {
	s.log.Info("reorderColumns request accepted",
		zap.String("actor_id", req.ActorId),
		zap.String("board_id", req.BoardId),
		zap.Int("columns", len(req.ColumnIds)),
	)

	board, err := s.memberBoard(ctx, req.BoardId, req.ActorId, reorderColumnsError)
	if err != nil {
		return nil, err
	}

	if len(req.ColumnIds) != len(board.Columns) {
		return nil, ErrInvalidReorder
	}
	seen := make(map[string]struct{}, len(req.ColumnIds))
	ids := make([]string, 0, len(req.ColumnIds))
	for _, raw := range req.ColumnIds {
		id, ok := parseID(raw)
		if !ok || board.Column(id) == nil {
			return nil, ErrInvalidReorder
		}
		if _, dup := seen[id]; dup {
			return nil, ErrInvalidReorder
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if err := s.repo.ReorderColumns(ctx, &dto.ReorderColumnsDTO{BoardId: board.Id, ColumnIds: ids}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrInvalidReorder, err)
		}
		return nil, fmt.Errorf("%w: %w", reorderColumnsError, err)
	}

	s.log.Info("columns reordered", zap.String("board_id", board.Id))
	return s.memberBoard(ctx, board.Id, req.ActorId, reorderColumnsError)
}

// memberBoard загружает доску, если актор её участник; иначе "Board not found"
func (s *BoardService) memberBoard(ctx context.Context, boardId, actorId string, opErr error) (*domain.Board, error) {
	id, ok := parseID(boardId)
	if !ok {
		return nil, ErrBoardNotFound
	}

	board, err := s.repo.GetForMember(ctx, id, actorId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrBoardNotFound, err)
		}
		s.log.Error("failed to load board", zap.String("board_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", opErr, err)
	}
	return board, nil
}

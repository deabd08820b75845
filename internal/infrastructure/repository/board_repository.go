package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	insertBoardQuery = `
INSERT INTO boards (id, name, description)
VALUES ($1, $2, $3)
RETURNING id, name, description, created_at;`

	insertBoardMemberQuery = `
INSERT INTO board_members (board_id, user_id)
VALUES ($1, $2)
ON CONFLICT (board_id, user_id) DO NOTHING;`

	insertColumnAtQuery = `
INSERT INTO columns (id, board_id, name, position)
VALUES ($1, $2, $3, $4);`

	selectBoardForMemberQuery = `
SELECT b.id, b.name, b.description, b.created_at
FROM boards b
JOIN board_members bm ON bm.board_id = b.id AND bm.user_id = $2
WHERE b.id = $1;`

	selectBoardsForMemberQuery = `
SELECT b.id, b.name, b.description, b.created_at
FROM boards b
JOIN board_members bm ON bm.board_id = b.id AND bm.user_id = $1
ORDER BY b.created_at ASC;`

	selectBoardMembersQuery = `
SELECT bm.board_id, ` + prefixedUserColumns + `
FROM board_members bm
JOIN users u ON u.id = bm.user_id
WHERE bm.board_id = ANY($1::uuid[])
ORDER BY bm.joined_at ASC;`

	selectBoardColumnsQuery = `
SELECT id, board_id, name, position, created_at
FROM columns
WHERE board_id = ANY($1::uuid[])
ORDER BY position ASC;`

	updateBoardQuery = `
UPDATE boards
SET name        = COALESCE($2, name),
    description = COALESCE($3, description)
WHERE id = $1
RETURNING id, name, description, created_at;`

	deleteBoardQuery = `
DELETE FROM boards
WHERE id = $1;`

	lockBoardQuery = `
SELECT id FROM boards
WHERE id = $1
FOR UPDATE;`

	countColumnsQuery = `
SELECT count(*) FROM columns
WHERE board_id = $1;`

	insertNextColumnQuery = `
INSERT INTO columns (id, board_id, name, position)
SELECT $1::uuid, $2::uuid, $3::text, COALESCE(MAX(position) + 1, 0)
FROM columns
WHERE board_id = $2
RETURNING id, board_id, name, position, created_at;`

	selectColumnQuery = `
SELECT id, board_id, name, position, created_at
FROM columns
WHERE id = $1 AND board_id = $2;`

	updateColumnQuery = `
UPDATE columns
SET name     = COALESCE($3, name),
    position = COALESCE($4, position)
WHERE id = $1 AND board_id = $2
RETURNING id, board_id, name, position, created_at;`

	syncTicketStatusQuery = `
UPDATE tickets
SET status = $2,
    updated_at = CURRENT_TIMESTAMP
WHERE column_id = $1;`

	countColumnTicketsQuery = `
SELECT count(*) FROM tickets
WHERE column_id = $1;`

	deleteColumnQuery = `
DELETE FROM columns
WHERE id = $1 AND board_id = $2;`

	reorderColumnQuery = `
UPDATE columns
SET position = $3
WHERE id = $1 AND board_id = $2;`
)

type BoardRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewBoardRepository(db *pgxpool.Pool, log *zap.Logger) *BoardRepository {
	return &BoardRepository{
		db:  db,
		log: log,
	}
}

func (r *BoardRepository) Create(ctx context.Context, d *dto.CreateBoardDTO) (*domain.Board, error) {
	r.log.Info("create board started",
		zap.String("board_id", d.Id),
		zap.String("creator_id", d.CreatorId),
		zap.Int("columns", len(d.Columns)),
	)

	var board *domain.Board
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		board, err = scanBoard(tx.QueryRow(ctx, insertBoardQuery, d.Id, d.Name, d.Description))
		if err != nil {
			return err
		}

		// Создатель сразу становится участником
		if _, err := tx.Exec(ctx, insertBoardMemberQuery, d.Id, d.CreatorId); err != nil {
			return err
		}

		// Стартовый набор колонок
		for i, column := range d.Columns {
			if _, err := tx.Exec(ctx, insertColumnAtQuery, column.Id, d.Id, column.Name, i); err != nil {
				return err
			}
		}

		return r.loadDetails(ctx, tx, []*domain.Board{board})
	})
	if err != nil {
		r.log.Error("failed to create board", zap.String("board_id", d.Id), zap.Error(err))
		return nil, err
	}

	r.log.Info("board created", zap.String("board_id", board.Id))
	return board, nil
}

func (r *BoardRepository) ListForMember(ctx context.Context, userId string) ([]*domain.Board, error) {
	rows, err := r.db.Query(ctx, selectBoardsForMemberQuery, userId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	boards := make([]*domain.Board, 0)
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	if err := r.loadDetails(ctx, r.db, boards); err != nil {
		return nil, handleDBError(err)
	}
	return boards, nil
}

// GetForMember возвращает ErrNotFound и для чужой, и для несуществующей доски
func (r *BoardRepository) GetForMember(ctx context.Context, boardId, userId string) (*domain.Board, error) {
	board, err := scanBoard(r.db.QueryRow(ctx, selectBoardForMemberQuery, boardId, userId))
	if err != nil {
		return nil, handleDBError(err)
	}

	if err := r.loadDetails(ctx, r.db, []*domain.Board{board}); err != nil {
		return nil, handleDBError(err)
	}
	return board, nil
}

func (r *BoardRepository) Update(ctx context.Context, d *dto.UpdateBoardDTO) (*domain.Board, error) {
	board, err := scanBoard(r.db.QueryRow(ctx, updateBoardQuery, d.BoardId, d.Name, d.Description))
	if err != nil {
		r.log.Error("failed to update board", zap.String("board_id", d.BoardId), zap.Error(err))
		return nil, handleDBError(err)
	}

	if err := r.loadDetails(ctx, r.db, []*domain.Board{board}); err != nil {
		return nil, handleDBError(err)
	}
	return board, nil
}

func (r *BoardRepository) Delete(ctx context.Context, boardId string) error {
	tag, err := r.db.Exec(ctx, deleteBoardQuery, boardId)
	if err != nil {
		r.log.Error("failed to delete board", zap.String("board_id", boardId), zap.Error(err))
		return handleDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BoardRepository) AddMember(ctx context.Context, boardId, userId string) error {
	if _, err := r.db.Exec(ctx, insertBoardMemberQuery, boardId, userId); err != nil {
		r.log.Error("failed to add board member",
			zap.String("board_id", boardId),
			zap.String("user_id", userId),
			zap.Error(err),
		)
		return handleDBError(err)
	}
	return nil
}

func (r *BoardRepository) CreateColumn(ctx context.Context, d *dto.CreateColumnDTO) (*domain.Column, error) {
	var column *domain.Column
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		// Блокируем доску, чтобы параллельные запросы не превысили лимит
		var id string
		if err := tx.QueryRow(ctx, lockBoardQuery, d.BoardId).Scan(&id); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, countColumnsQuery, d.BoardId).Scan(&count); err != nil {
			return err
		}
		if count >= d.MaxColumns {
			return ErrColumnLimit
		}

		var err error
		column, err = scanColumn(tx.QueryRow(ctx, insertNextColumnQuery, d.Id, d.BoardId, d.Name))
		return err
	})
	if err != nil {
		r.log.Warn("failed to create column", zap.String("board_id", d.BoardId), zap.Error(err))
		return nil, err
	}
	return column, nil
}

func (r *BoardRepository) GetColumn(ctx context.Context, boardId, columnId string) (*domain.Column, error) {
	column, err := scanColumn(r.db.QueryRow(ctx, selectColumnQuery, columnId, boardId))
	if err != nil {
		return nil, handleDBError(err)
	}
	return column, nil
}

// UpdateColumn при переименовании синхронизирует статус тикетов колонки
func (r *BoardRepository) UpdateColumn(ctx context.Context, d *dto.UpdateColumnDTO) (*domain.Column, error) {
	var column *domain.Column
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		column, err = scanColumn(tx.QueryRow(ctx, updateColumnQuery, d.ColumnId, d.BoardId, d.Name, d.Order))
		if err != nil {
			return err
		}

		if d.Name != nil {
			if _, err := tx.Exec(ctx, syncTicketStatusQuery, d.ColumnId, column.Name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.Warn("failed to update column", zap.String("column_id", d.ColumnId), zap.Error(err))
		return nil, err
	}
	return column, nil
}

func (r *BoardRepository) DeleteColumn(ctx context.Context, boardId, columnId string) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, lockBoardQuery, boardId).Scan(&id); err != nil {
			return err
		}

		if _, err := scanColumn(tx.QueryRow(ctx, selectColumnQuery, columnId, boardId)); err != nil {
			return err
		}

		var tickets int
		if err := tx.QueryRow(ctx, countColumnTicketsQuery, columnId).Scan(&tickets); err != nil {
			return err
		}
		if tickets > 0 {
			return ErrColumnNotEmpty
		}

		var columns int
		if err := tx.QueryRow(ctx, countColumnsQuery, boardId).Scan(&columns); err != nil {
			return err
		}
		if columns <= domain.MinColumns {
			return ErrLastColumn
		}

		_, err := tx.Exec(ctx, deleteColumnQuery, columnId, boardId)
		return err
	})
	if err != nil {
		r.log.Warn("failed to delete column",
			zap.String("board_id", boardId),
			zap.String("column_id", columnId),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ReorderColumns переписывает позиции одной транзакцией, уникальность проверяется на коммите
func (r *BoardRepository) ReorderColumns(ctx context.Context, d *dto.ReorderColumnsDTO) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for i, columnId := range d.ColumnIds {
			tag, err := tx.Exec(ctx, reorderColumnQuery, columnId, d.BoardId, i)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to reorder columns", zap.String("board_id", d.BoardId), zap.Error(err))
		return err
	}
	return nil
}

// loadDetails догружает участников и колонки для набора досок
func (r *BoardRepository) loadDetails(ctx context.Context, q querier, boards []*domain.Board) error {
	if len(boards) == 0 {
		return nil
	}

	ids := make([]string, 0, len(boards))
	byId := make(map[string]*domain.Board, len(boards))
	for _, b := range boards {
		b.Members = make([]*domain.User, 0)
		b.Columns = make([]*domain.Column, 0)
		ids = append(ids, b.Id)
		byId[b.Id] = b
	}

	memberRows, err := q.Query(ctx, selectBoardMembersQuery, ids)
	if err != nil {
		return err
	}
	for memberRows.Next() {
		var boardId string
		u := &domain.User{}
		if err := memberRows.Scan(append([]any{&boardId}, userDest(u)...)...); err != nil {
			memberRows.Close()
			return err
		}
		if b, ok := byId[boardId]; ok {
			b.Members = append(b.Members, u)
		}
	}
	memberRows.Close()
	if err := memberRows.Err(); err != nil {
		return err
	}

	columnRows, err := q.Query(ctx, selectBoardColumnsQuery, ids)
	if err != nil {
		return err
	}
	defer columnRows.Close()
	for columnRows.Next() {
		column, err := scanColumn(columnRows)
		if err != nil {
			return err
		}
		if b, ok := byId[column.BoardId]; ok {
			b.Columns = append(b.Columns, column)
		}
	}
	return columnRows.Err()
}

func scanBoard(row pgx.Row) (*domain.Board, error) {
	b := &domain.Board{}
	if err := row.Scan(&b.Id, &b.Name, &b.Description, &b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func scanColumn(row pgx.Row) (*domain.Column, error) {
	c := &domain.Column{}
	if err := row.Scan(&c.Id, &c.BoardId, &c.Name, &c.Order, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

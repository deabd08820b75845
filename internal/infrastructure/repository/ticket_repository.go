package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	ticketColumns = `t.id, t.title, t.description, t.priority, t.status, t.board_id, t.column_id, t.assignee_id, t.created_by, t.created_at, t.updated_at`

	insertTicketQuery = `
INSERT INTO tickets (id, title, description, priority, status, board_id, column_id, assignee_id, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	insertWatcherQuery = `
INSERT INTO ticket_watchers (ticket_id, user_id)
VALUES ($1, $2)
ON CONFLICT (ticket_id, user_id) DO NOTHING;`

	deleteWatcherQuery = `
DELETE FROM ticket_watchers
WHERE ticket_id = $1 AND user_id = $2;`

	insertHistoryQuery = `
INSERT INTO ticket_history (id, ticket_id, field, old_value, new_value, user_id, comment_id, message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	selectTicketQuery = `
SELECT ` + ticketColumns + `
FROM tickets t
WHERE t.id = $1;`

	selectTicketForMemberQuery = `
SELECT ` + ticketColumns + `
FROM tickets t
JOIN board_members bm ON bm.board_id = t.board_id AND bm.user_id = $2
WHERE t.id = $1;`

	selectBoardTicketsQuery = `
SELECT ` + ticketColumns + `
FROM tickets t
WHERE t.board_id = $1
ORDER BY t.created_at ASC;`

	searchTicketsQuery = `
SELECT ` + ticketColumns + `
FROM tickets t
JOIN board_members bm ON bm.board_id = t.board_id AND bm.user_id = $1
WHERE (t.title ILIKE $2 OR t.description ILIKE $2)
  AND ($3::uuid IS NULL OR t.board_id = $3::uuid)
ORDER BY t.updated_at DESC
LIMIT $4;`

	updateTicketQuery = `
UPDATE tickets
SET title       = COALESCE($2, title),
    description = COALESCE($3, description),
    priority    = COALESCE($4, priority),
    column_id   = COALESCE($5::uuid, column_id),
    status      = COALESCE($6, status),
    assignee_id = CASE WHEN $7::boolean THEN $8::uuid ELSE assignee_id END,
    updated_at  = CURRENT_TIMESTAMP
WHERE id = $1;`

	deleteTicketQuery = `
DELETE FROM tickets
WHERE id = $1;`

	selectWatchersQuery = `
SELECT tw.ticket_id, ` + prefixedUserColumns + `
FROM ticket_watchers tw
JOIN users u ON u.id = tw.user_id
WHERE tw.ticket_id = ANY($1::uuid[])
ORDER BY tw.added_at ASC;`

	selectAssigneesQuery = `
SELECT t.id, ` + prefixedUserColumns + `
FROM tickets t
JOIN users u ON u.id = t.assignee_id
WHERE t.id = ANY($1::uuid[]);`

	selectHistoryQuery = `
SELECT h.id, h.ticket_id, h.field, h.old_value, h.new_value, h.user_id, h.comment_id, h.message, h.created_at,
       ` + prefixedUserColumns + `
FROM ticket_history h
JOIN users u ON u.id = h.user_id
WHERE h.ticket_id = $1
ORDER BY h.created_at DESC;`
)

type TicketRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewTicketRepository(db *pgxpool.Pool, log *zap.Logger) *TicketRepository {
	return &TicketRepository{
		db:  db,
		log: log,
	}
}

func (r *TicketRepository) Create(ctx context.Context, d *dto.CreateTicketDTO) (*domain.Ticket, error) {
	r.log.Info("create ticket started",
		zap.String("ticket_id", d.Id),
		zap.String("board_id", d.BoardId),
		zap.Int("history_entries", len(d.History)),
	)

	var ticket *domain.Ticket
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertTicketQuery,
			d.Id,
			d.Title,
			d.Description,
			string(d.Priority),
			d.Status,
			d.BoardId,
			d.ColumnId,
			d.AssigneeId,
			d.CreatorId,
		)
		if err != nil {
			return err
		}

		// Создатель всегда первый наблюдатель
		if _, err := tx.Exec(ctx, insertWatcherQuery, d.Id, d.CreatorId); err != nil {
			return err
		}

		for _, h := range d.History {
			if err := insertHistory(ctx, tx, d.Id, h); err != nil {
				return err
			}
		}

		ticket, err = r.get(ctx, tx, d.Id)
		return err
	})
	if err != nil {
		r.log.Error("failed to create ticket", zap.String("ticket_id", d.Id), zap.Error(err))
		return nil, err
	}

	r.log.Info("ticket created", zap.String("ticket_id", ticket.Id))
	return ticket, nil
}

// GetForMember возвращает ErrNotFound, если пользователь не состоит в доске тикета
func (r *TicketRepository) GetForMember(ctx context.Context, ticketId, userId string) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, selectTicketForMemberQuery, ticketId, userId))
	if err != nil {
		return nil, handleDBError(err)
	}
	if err := loadTicketUsers(ctx, r.db, []*domain.Ticket{ticket}); err != nil {
		return nil, handleDBError(err)
	}
	return ticket, nil
}

func (r *TicketRepository) ListByBoard(ctx context.Context, boardId string) ([]*domain.Ticket, error) {
	return r.list(ctx, selectBoardTicketsQuery, boardId)
}

func (r *TicketRepository) Search(ctx context.Context, d *dto.SearchTicketsDTO) ([]*domain.Ticket, error) {
	pattern := "%" + escapeLike(d.Query) + "%"
	return r.list(ctx, searchTicketsQuery, d.UserId, pattern, d.BoardId, d.Limit)
}

func (r *TicketRepository) Update(ctx context.Context, d *dto.UpdateTicketDTO) (*domain.Ticket, error) {
	var priority *string
	if d.Priority != nil {
		p := string(*d.Priority)
		priority = &p
	}

	var ticket *domain.Ticket
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		// История пишется в той же транзакции, что и изменение
		for _, h := range d.History {
			if err := insertHistory(ctx, tx, d.TicketId, h); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, updateTicketQuery,
			d.TicketId,
			d.Title,
			d.Description,
			priority,
			d.ColumnId,
			d.Status,
			d.SetAssignee,
			d.AssigneeId,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		ticket, err = r.get(ctx, tx, d.TicketId)
		return err
	})
	if err != nil {
		r.log.Error("failed to update ticket", zap.String("ticket_id", d.TicketId), zap.Error(err))
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) Delete(ctx context.Context, ticketId string) error {
	tag, err := r.db.Exec(ctx, deleteTicketQuery, ticketId)
	if err != nil {
		r.log.Error("failed to delete ticket", zap.String("ticket_id", ticketId), zap.Error(err))
		return handleDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TicketRepository) AddWatcher(ctx context.Context, ticketId, userId string) ([]*domain.User, error) {
	if _, err := r.db.Exec(ctx, insertWatcherQuery, ticketId, userId); err != nil {
		return nil, handleDBError(err)
	}
	return r.ListWatchers(ctx, ticketId)
}

func (r *TicketRepository) RemoveWatcher(ctx context.Context, ticketId, userId string) ([]*domain.User, error) {
	if _, err := r.db.Exec(ctx, deleteWatcherQuery, ticketId, userId); err != nil {
		return nil, handleDBError(err)
	}
	return r.ListWatchers(ctx, ticketId)
}

func (r *TicketRepository) ListWatchers(ctx context.Context, ticketId string) ([]*domain.User, error) {
	watchers, err := selectWatchers(ctx, r.db, []string{ticketId})
	if err != nil {
		return nil, handleDBError(err)
	}
	if list, ok := watchers[ticketId]; ok {
		return list, nil
	}
	return make([]*domain.User, 0), nil
}

func (r *TicketRepository) ListHistory(ctx context.Context, ticketId string) ([]*domain.TicketHistory, error) {
	rows, err := r.db.Query(ctx, selectHistoryQuery, ticketId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	history := make([]*domain.TicketHistory, 0)
	for rows.Next() {
		h := &domain.TicketHistory{User: &domain.User{}}
		var field string
		dest := []any{&h.Id, &h.TicketId, &field, &h.OldValue, &h.NewValue, &h.UserId, &h.CommentId, &h.Message, &h.CreatedAt}
		if err := rows.Scan(append(dest, userDest(h.User)...)...); err != nil {
			return nil, handleDBError(err)
		}
		h.Field = domain.HistoryField(field)
		history = append(history, h)
	}
	return history, handleDBError(rows.Err())
}

func (r *TicketRepository) get(ctx context.Context, q querier, ticketId string) (*domain.Ticket, error) {
	ticket, err := scanTicket(q.QueryRow(ctx, selectTicketQuery, ticketId))
	if err != nil {
		return nil, err
	}
	if err := loadTicketUsers(ctx, q, []*domain.Ticket{ticket}); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	if err := loadTicketUsers(ctx, r.db, tickets); err != nil {
		return nil, handleDBError(err)
	}
	return tickets, nil
}

// loadTicketUsers догружает исполнителей и наблюдателей
func loadTicketUsers(ctx context.Context, q querier, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	ids := make([]string, 0, len(tickets))
	byId := make(map[string]*domain.Ticket, len(tickets))
	for _, t := range tickets {
		t.Watchers = make([]*domain.User, 0)
		ids = append(ids, t.Id)
		byId[t.Id] = t
	}

	watchers, err := selectWatchers(ctx, q, ids)
	if err != nil {
		return err
	}
	for ticketId, list := range watchers {
		if t, ok := byId[ticketId]; ok {
			t.Watchers = list
		}
	}

	rows, err := q.Query(ctx, selectAssigneesQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ticketId string
		u := &domain.User{}
		if err := rows.Scan(append([]any{&ticketId}, userDest(u)...)...); err != nil {
			return err
		}
		if t, ok := byId[ticketId]; ok {
			t.Assignee = u
		}
	}
	return rows.Err()
}

func selectWatchers(ctx context.Context, q querier, ticketIds []string) (map[string][]*domain.User, error) {
	rows, err := q.Query(ctx, selectWatchersQuery, ticketIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	watchers := make(map[string][]*domain.User)
	for rows.Next() {
		var ticketId string
		u := &domain.User{}
		if err := rows.Scan(append([]any{&ticketId}, userDest(u)...)...); err != nil {
			return nil, err
		}
		watchers[ticketId] = append(watchers[ticketId], u)
	}
	return watchers, rows.Err()
}

func insertHistory(ctx context.Context, q querier, ticketId string, h *dto.HistoryDTO) error {
	_, err := q.Exec(ctx, insertHistoryQuery,
		h.Id,
		ticketId,
		string(h.Field),
		h.OldValue,
		h.NewValue,
		h.UserId,
		h.CommentId,
		h.Message,
	)
	return err
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var priority string
	err := row.Scan(
		&t.Id,
		&t.Title,
		&t.Description,
		&priority,
		&t.Status,
		&t.BoardId,
		&t.ColumnId,
		&t.AssigneeId,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = domain.Priority(priority)
	return t, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

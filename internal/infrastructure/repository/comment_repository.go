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
	commentColumns = `c.id, c.ticket_id, c.user_id, c.content, c.created_at, c.updated_at`

	insertCommentQuery = `
INSERT INTO comments (id, ticket_id, user_id, content)
VALUES ($1, $2, $3, $4);`

	updateCommentQuery = `
UPDATE comments
SET content    = $2,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING ticket_id;`

	deleteCommentQuery = `
DELETE FROM comments
WHERE id = $1
RETURNING ticket_id;`

	touchTicketQuery = `
UPDATE tickets
SET updated_at = CURRENT_TIMESTAMP
WHERE id = $1;`

	selectCommentQuery = `
SELECT ` + commentColumns + `, ` + prefixedUserColumns + `
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.id = $1;`

	selectTicketCommentsQuery = `
SELECT ` + commentColumns + `, ` + prefixedUserColumns + `
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.ticket_id = $1
ORDER BY c.created_at ASC;`
)

type CommentRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewCommentRepository(db *pgxpool.Pool, log *zap.Logger) *CommentRepository {
	return &CommentRepository{
		db:  db,
		log: log,
	}
}

func (r *CommentRepository) Create(ctx context.Context, d *dto.CreateCommentDTO) (*domain.Comment, error) {
	var comment *domain.Comment
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertCommentQuery, d.Id, d.TicketId, d.UserId, d.Content); err != nil {
			return err
		}
		if err := r.writeHistory(ctx, tx, d.TicketId, d.History); err != nil {
			return err
		}

		var err error
		comment, err = scanComment(tx.QueryRow(ctx, selectCommentQuery, d.Id))
		return err
	})
	if err != nil {
		r.log.Error("failed to create comment", zap.String("ticket_id", d.TicketId), zap.Error(err))
		return nil, err
	}
	return comment, nil
}

func (r *CommentRepository) Update(ctx context.Context, d *dto.UpdateCommentDTO) (*domain.Comment, error) {
	var comment *domain.Comment
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var ticketId string
		if err := tx.QueryRow(ctx, updateCommentQuery, d.CommentId, d.Content).Scan(&ticketId); err != nil {
			return err
		}
		if err := r.writeHistory(ctx, tx, ticketId, d.History); err != nil {
			return err
		}

		var err error
		comment, err = scanComment(tx.QueryRow(ctx, selectCommentQuery, d.CommentId))
		return err
	})
	if err != nil {
		r.log.Error("failed to update comment", zap.String("comment_id", d.CommentId), zap.Error(err))
		return nil, err
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, d *dto.DeleteCommentDTO) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var ticketId string
		if err := tx.QueryRow(ctx, deleteCommentQuery, d.CommentId).Scan(&ticketId); err != nil {
			return err
		}
		// Комментарий уже удалён, ссылку в истории не сохраняем
		if d.History != nil {
			d.History.CommentId = nil
		}
		return r.writeHistory(ctx, tx, ticketId, d.History)
	})
	if err != nil {
		r.log.Error("failed to delete comment", zap.String("comment_id", d.CommentId), zap.Error(err))
		return err
	}
	return nil
}

func (r *CommentRepository) GetById(ctx context.Context, commentId string) (*domain.Comment, error) {
	comment, err := scanComment(r.db.QueryRow(ctx, selectCommentQuery, commentId))
	if err != nil {
		return nil, handleDBError(err)
	}
	return comment, nil
}

func (r *CommentRepository) ListByTicket(ctx context.Context, ticketId string) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx, selectTicketCommentsQuery, ticketId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		comments = append(comments, comment)
	}
	return comments, handleDBError(rows.Err())
}

func (r *CommentRepository) writeHistory(ctx context.Context, tx pgx.Tx, ticketId string, h *dto.HistoryDTO) error {
	if _, err := tx.Exec(ctx, touchTicketQuery, ticketId); err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	return insertHistory(ctx, tx, ticketId, h)
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	c := &domain.Comment{User: &domain.User{}}
	dest := []any{&c.Id, &c.TicketId, &c.UserId, &c.Content, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, userDest(c.User)...)...); err != nil {
		return nil, err
	}
	return c, nil
}

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
	notificationColumns = `id, user_id, type, message, ticket_id, is_read, created_at`

	insertNotificationQuery = `
INSERT INTO notifications (id, user_id, type, message, ticket_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + notificationColumns + `;`

	selectNotificationsQuery = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;`

	markNotificationReadQuery = `
UPDATE notifications
SET is_read = TRUE
WHERE id = $1 AND user_id = $2
RETURNING ` + notificationColumns + `;`

	markAllNotificationsReadQuery = `
UPDATE notifications
SET is_read = TRUE
WHERE user_id = $1 AND is_read = FALSE;`
)

type NotificationRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:  db,
		log: log,
	}
}

// CreateMany пишет все уведомления одной транзакцией
func (r *NotificationRepository) CreateMany(ctx context.Context, ds []*dto.CreateNotificationDTO) ([]*domain.Notification, error) {
	if len(ds) == 0 {
		return make([]*domain.Notification, 0), nil
	}

	notifications := make([]*domain.Notification, 0, len(ds))
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, d := range ds {
			n, err := scanNotification(tx.QueryRow(ctx, insertNotificationQuery,
				d.Id,
				d.UserId,
				d.Type,
				d.Message,
				d.TicketId,
			))
			if err != nil {
				return err
			}
			notifications = append(notifications, n)
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to create notifications", zap.Int("count", len(ds)), zap.Error(err))
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userId string, limit int) ([]*domain.Notification, error) {
	rows, err := r.db.Query(ctx, selectNotificationsQuery, userId, limit)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		notifications = append(notifications, n)
	}
	return notifications, handleDBError(rows.Err())
}

// MarkRead возвращает ErrNotFound для чужого уведомления
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userId string) (*domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, markNotificationReadQuery, id, userId))
	if err != nil {
		return nil, handleDBError(err)
	}
	return n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	tag, err := r.db.Exec(ctx, markAllNotificationsReadQuery, userId)
	if err != nil {
		r.log.Error("failed to mark notifications read", zap.String("user_id", userId), zap.Error(err))
		return 0, handleDBError(err)
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := row.Scan(
		&n.Id,
		&n.UserId,
		&n.Type,
		&n.Message,
		&n.TicketId,
		&n.IsRead,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

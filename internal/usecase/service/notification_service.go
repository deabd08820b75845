package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/repository"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"go.uber.org/zap"
)

const notificationsLimit = 100

var (
	listNotificationsError = errors.New("list notifications error")
	markReadError          = errors.New("mark notification read error")
	markAllReadError       = errors.New("mark all notifications read error")
)

type NotificationRepository interface {
	CreateMany(ctx context.Context, ds []*dto.CreateNotificationDTO) ([]*domain.Notification, error)
	ListByUser(ctx context.Context, userId string, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, userId string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userId string) (int64, error)
}

// Publisher доставляет событие в персональный канал пользователя
type Publisher interface {
	Publish(ctx context.Context, userId, event string, payload any) error
}

type NotificationService struct {
	repo      NotificationRepository
	publisher Publisher
	log       *zap.Logger
}

func NewNotificationService(repo NotificationRepository, publisher Publisher, log *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// FanOut уведомляет наблюдателей тикета, кроме автора изменения.
// Ошибки только логируются: запрос, вызвавший рассылку, уже выполнен.
func (s *NotificationService) FanOut(ctx context.Context, ticket *domain.Ticket, actor *domain.User, event string, payload any) {
	message := notificationMessage(event, ticket, actor)

	ds := make([]*dto.CreateNotificationDTO, 0, len(ticket.Watchers))
	for _, w := range ticket.Watchers {
		if actor != nil && w.Id == actor.Id {
			continue
		}
		ds = append(ds, &dto.CreateNotificationDTO{
			Id:       uuid.NewString(),
			UserId:   w.Id,
			Type:     event,
			Message:  message,
			TicketId: ticket.Id,
		})
	}
	if len(ds) == 0 {
		return
	}

	notifications, err := s.repo.CreateMany(ctx, ds)
	if err != nil {
		s.log.Error("failed to persist notifications",
			zap.String("ticket_id", ticket.Id),
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	for _, n := range notifications {
		s.publish(ctx, n.UserId, event, payload)
		s.publish(ctx, n.UserId, domain.EventNotification, n)
	}

	s.log.Info("notifications fanned out",
		zap.String("ticket_id", ticket.Id),
		zap.String("event", event),
		zap.Int("recipients", len(notifications)),
	)
}

// Broadcast отправляет событие без сохранения уведомлений
func (s *NotificationService) Broadcast(ctx context.Context, userIds []string, event string, payload any) {
	for _, id := range userIds {
		s.publish(ctx, id, event, payload)
	}
}

func (s *NotificationService) List(ctx context.Context, userId string) ([]*domain.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userId, notificationsLimit)
	if err != nil {
		s.log.Error("failed to list notifications", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", listNotificationsError, err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userId, notificationId string) (*domain.Notification, error) {
	id, ok := parseID(notificationId)
	if !ok {
		return nil, ErrNotificationNotFound
	}

	n, err := s.repo.MarkRead(ctx, id, userId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrNotificationNotFound, err)
		}
		s.log.Error("failed to mark notification read", zap.String("notification_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", markReadError, err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userId string) (*response.MarkAllReadResponse, error) {
	updated, err := s.repo.MarkAllRead(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", markAllReadError, err)
	}

	s.log.Info("notifications marked read", zap.String("user_id", userId), zap.Int64("updated", updated))
	return &response.MarkAllReadResponse{
		Message: "All notifications marked as read",
		Updated: updated,
	}, nil
}

func (s *NotificationService) publish(ctx context.Context, userId, event string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, userId, event, payload); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("user_id", userId),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func notificationMessage(event string, ticket *domain.Ticket, actor *domain.User) string {
	switch event {
	case domain.EventNewComment:
		return fmt.Sprintf("%s commented on %q", actor.DisplayName(), ticket.Title)
	default:
		return fmt.Sprintf("%s updated %q", actor.DisplayName(), ticket.Title)
	}
}

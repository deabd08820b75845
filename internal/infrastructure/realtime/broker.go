package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultChannel = "board-events"
	reconnectDelay = time.Second
)

var errPublish = errors.New("publish event error")

// Broker доставляет события в Hub всех инстансов через redis pub/sub.
// Без redis события идут напрямую в локальный Hub.
type Broker struct {
	rc      *redis.Client
	hub     *Hub
	channel string
	log     *zap.Logger
}

func NewBroker(rc *redis.Client, hub *Hub, channel string, log *zap.Logger) *Broker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broker{
		rc:      rc,
		hub:     hub,
		channel: channel,
		log:     log,
	}
}

func (b *Broker) Publish(ctx context.Context, userId, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", errPublish, err)
	}
	ev := &domain.Event{UserId: userId, Name: event, Data: data}
	eventsPublished.WithLabelValues(event).Inc()

	if b.rc == nil {
		b.hub.SendMessage(ev)
		return nil
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: %w", errPublish, err)
	}
	if err := b.rc.Publish(ctx, b.channel, msg).Err(); err != nil {
		return fmt.Errorf("%w: %w", errPublish, err)
	}
	return nil
}

// Run читает канал до отмены ctx и переподключается при обрыве подписки
func (b *Broker) Run(ctx context.Context) {
	if b.rc == nil {
		return
	}

	for {
		sub := b.rc.Subscribe(ctx, b.channel)
		ch := sub.Channel()

	receive:
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break receive
				}
				b.deliver(msg.Payload)
			}
		}

		sub.Close()
		if ctx.Err() != nil {
			return
		}
		b.log.Error("pubsub channel closed, reconnecting", zap.String("channel", b.channel))

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (b *Broker) deliver(payload string) {
	ev := &domain.Event{}
	if err := json.Unmarshal([]byte(payload), ev); err != nil {
		b.log.Error("unable to parse event", zap.Error(err))
		return
	}
	if ev.UserId == "" || ev.Name == "" {
		b.log.Warn("event without user or name skipped")
		return
	}
	b.hub.SendMessage(ev)
}

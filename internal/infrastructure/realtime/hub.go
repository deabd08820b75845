package realtime

import (
	"sync"

	"github.com/niklvrr/TicketBoard/internal/domain"
	"go.uber.org/zap"
)

const subscriberBuffer = 8

// Hub хранит подписчиков по комнатам пользователей
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *domain.Event]struct{}
	closed      bool
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan *domain.Event]struct{}),
		log:         log,
	}
}

// Register открывает новый канал для пользователя
func (h *Hub) Register(userId string) chan *domain.Event {
	ch := make(chan *domain.Event, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	room, ok := h.subscribers[userId]
	if !ok {
		room = make(map[chan *domain.Event]struct{})
		h.subscribers[userId] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()

	subscribersGauge.Inc()
	return ch
}

// Unregister закрывает канал, повторный вызов безопасен
func (h *Hub) Unregister(userId string, ch chan *domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.subscribers[userId]
	if !ok {
		return
	}
	if _, ok := room[ch]; !ok {
		return
	}
	delete(room, ch)
	if len(room) == 0 {
		delete(h.subscribers, userId)
	}
	close(ch)
	subscribersGauge.Dec()
}

// SendMessage не блокируется: полный буфер означает потерю события
func (h *Hub) SendMessage(ev *domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[ev.UserId] {
		select {
		case ch <- ev:
		default:
			eventsDropped.Inc()
			h.log.Warn("subscriber buffer full, event dropped",
				zap.String("user_id", ev.UserId),
				zap.String("event", ev.Name),
			)
		}
	}
}

// Close завершает все открытые потоки, новые подписки сразу закрыты
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userId, room := range h.subscribers {
		for ch := range room {
			close(ch)
			subscribersGauge.Dec()
		}
		delete(h.subscribers, userId)
	}
	h.log.Info("event hub closed")
}

func (h *Hub) Subscribers(userId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userId])
}

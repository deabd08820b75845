package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
	"go.uber.org/zap"
)

const defaultKeepAlive = 25 * time.Second

// Subscriptions персональные каналы событий пользователей
type Subscriptions interface {
	Register(userId string) chan *domain.Event
	Unregister(userId string, ch chan *domain.Event)
}

type EventsHandler struct {
	subs      Subscriptions
	keepAlive time.Duration
	log       *zap.Logger
}

func NewEventsHandler(subs Subscriptions, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		subs:      subs,
		keepAlive: defaultKeepAlive,
		log:       log,
	}
}

// Stream держит SSE соединение и пишет события из комнаты пользователя
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		RespondError(w, service.ErrTokenRequired)
		return
	}

	rc := http.NewResponseController(w)
	// Серверный WriteTimeout не должен обрывать долгий поток
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug("write deadline not supported", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch := h.subs.Register(user.Id)
	defer h.subs.Unregister(user.Id, ch)

	h.log.Info("event stream opened", zap.String("user_id", user.Id))
	defer h.log.Info("event stream closed", zap.String("user_id", user.Id))

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Warn("streaming not supported", zap.Error(err))
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/niklvrr/TicketBoard/internal/transport/handler"
	transportMiddleware "github.com/niklvrr/TicketBoard/internal/transport/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Board         *handler.BoardHandler
	Ticket        *handler.TicketHandler
	Notification  *handler.NotificationHandler
	Events        *handler.EventsHandler
	Health        *handler.HealthHandler
	Authenticator transportMiddleware.Authenticator
	RateLimiter   transportMiddleware.RateLimiter
}

type RouterConfig struct {
	CorsOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(h *Handlers, cfg RouterConfig, log *zap.Logger) *chi.Mux {
	router := chi.NewRouter()

	// Recovery должен быть первым для обработки паник во всех middleware
	router.Use(transportMiddleware.Recovery(log))

	// RequestID для трейсинга запросов
	router.Use(middleware.RequestID)

	// RealIP до лимитера: ключом служит адрес клиента за прокси
	router.Use(middleware.RealIP)

	router.Use(transportMiddleware.Logging(log))
	router.Use(transportMiddleware.Metrics)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Эндпоинт для Prometheus метрик
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", h.Health.HealthCheck)

	router.Route("/api", func(api chi.Router) {
		api.Use(transportMiddleware.RateLimit(h.RateLimiter, log))

		// SSE живёт дольше таймаута запроса
		api.With(transportMiddleware.AuthenticateStream(h.Authenticator, log)).
			Get("/events", h.Events.Stream)

		api.Group(func(r chi.Router) {
			r.Use(transportMiddleware.Timeout(cfg.RequestTimeout, log))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
				r.Post("/google", h.Auth.GoogleLogin)

				r.Group(func(r chi.Router) {
					r.Use(transportMiddleware.Authenticate(h.Authenticator, log))

					r.Get("/me", h.Auth.Me)
					r.Put("/me", h.Auth.UpdateProfile)
					r.Get("/users", h.Auth.ListUsers)

					r.Get("/notifications", h.Notification.List)
					r.Patch("/notifications/read", h.Notification.MarkAllRead)
					r.Patch("/notifications/{id}/read", h.Notification.MarkRead)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(transportMiddleware.Authenticate(h.Authenticator, log))

				r.Route("/boards", func(r chi.Router) {
					r.Post("/", h.Board.CreateBoard)
					r.Get("/", h.Board.ListBoards)

					r.Route("/{boardId}", func(r chi.Router) {
						r.Get("/", h.Board.GetBoard)
						r.Put("/", h.Board.UpdateBoard)
						r.Delete("/", h.Board.DeleteBoard)
						r.Post("/members", h.Board.AddMember)

						r.Post("/columns", h.Board.CreateColumn)
						r.Put("/columns/reorder", h.Board.ReorderColumns)
						r.Put("/columns/{columnId}", h.Board.UpdateColumn)
						r.Delete("/columns/{columnId}", h.Board.DeleteColumn)
					})
				})

				r.Route("/tickets", func(r chi.Router) {
					r.Post("/", h.Ticket.CreateTicket)
					r.Get("/search", h.Ticket.SearchTickets)
					r.Get("/board/{boardId}", h.Ticket.ListTickets)

					r.Route("/{ticketId}", func(r chi.Router) {
						r.Get("/", h.Ticket.GetTicket)
						r.Put("/", h.Ticket.UpdateTicket)
						r.Delete("/", h.Ticket.DeleteTicket)

						r.Post("/comments", h.Ticket.AddComment)
						r.Put("/comments/{commentId}", h.Ticket.EditComment)
						r.Delete("/comments/{commentId}", h.Ticket.DeleteComment)

						r.Post("/watchers", h.Ticket.AddWatcher)
						r.Delete("/watchers", h.Ticket.RemoveWatcher)
					})
				})
			})
		})
	})

	return router
}

package response

import "github.com/niklvrr/TicketBoard/internal/domain"

type MessageResponse struct {
	Message string `json:"message"`
}

type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type WatchersResponse struct {
	TicketId string          `json:"ticketId"`
	Watchers []*UserResponse `json:"watchers"`
}

func NewWatchersResponse(ticketId string, watchers []*domain.User) *WatchersResponse {
	return &WatchersResponse{
		TicketId: ticketId,
		Watchers: NewUserResponses(watchers),
	}
}

package request

type CreateTicketRequest struct {
	ActorId     string  `json:"-"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	BoardId     string  `json:"boardId"`
	AssigneeId  *string `json:"assigneeId"`
}

type UpdateTicketRequest struct {
	ActorId     string         `json:"-"`
	TicketId    string         `json:"-"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Priority    *string        `json:"priority"`
	ColumnId    *string        `json:"columnId"`
	AssigneeId  OptionalString `json:"assigneeId"`
}

type SearchTicketsRequest struct {
	ActorId string
	Query   string
	BoardId string
}

type CommentRequest struct {
	ActorId   string `json:"-"`
	TicketId  string `json:"-"`
	CommentId string `json:"-"`
	Content   string `json:"content"`
}

type WatcherRequest struct {
	ActorId  string `json:"-"`
	TicketId string `json:"-"`
	UserId   string `json:"userId"`
}

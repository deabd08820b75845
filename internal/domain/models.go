package domain

import (
	"encoding/json"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type HistoryField string

const (
	HistoryCreated        HistoryField = "CREATED"
	HistoryTitle          HistoryField = "TITLE"
	HistoryPriority       HistoryField = "PRIORITY"
	HistoryAssignee       HistoryField = "ASSIGNEE"
	HistoryStatus         HistoryField = "STATUS"
	HistoryCommentAdded   HistoryField = "COMMENT_ADDED"
	HistoryCommentEdited  HistoryField = "COMMENT_EDITED"
	HistoryCommentDeleted HistoryField = "COMMENT_DELETED"
)

// Имена событий, которые уходят в персональный канал пользователя
const (
	EventTicketUpdated   = "ticket-updated"
	EventNewComment      = "new-comment"
	EventWatchersUpdated = "watchers-updated"
	EventNotification    = "notification"
)

const (
	MinColumns = 1
	MaxColumns = 6
)

type User struct {
	Id              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PasswordHash    *string   `json:"-"`
	GoogleId        *string   `json:"-"`
	ProfileImage    *string   `json:"profileImage"`
	ProfileImageKey *string   `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DisplayName возвращает имя для истории и уведомлений
func (u *User) DisplayName() string {
	if u == nil {
		return "Someone"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Someone"
}

type Board struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []*User   `json:"members"`
	Columns     []*Column `json:"columns"`
	Tickets     []*Ticket `json:"tickets,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (b *Board) HasMember(userId string) bool {
	return b.Member(userId) != nil
}

func (b *Board) Member(userId string) *User {
	for _, m := range b.Members {
		if m.Id == userId {
			return m
		}
	}
	return nil
}

func (b *Board) Column(columnId string) *Column {
	for _, c := range b.Columns {
		if c.Id == columnId {
			return c
		}
	}
	return nil
}

type Column struct {
	Id        string    `json:"id"`
	BoardId   string    `json:"boardId"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

type Ticket struct {
	Id          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    Priority         `json:"priority"`
	Status      string           `json:"status"`
	BoardId     string           `json:"boardId"`
	ColumnId    string           `json:"columnId"`
	AssigneeId  *string          `json:"assigneeId"`
	Assignee    *User            `json:"assignee"`
	CreatedBy   string           `json:"createdBy"`
	Watchers    []*User          `json:"watchers"`
	Comments    []*Comment       `json:"comments,omitempty"`
	History     []*TicketHistory `json:"history,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type Comment struct {
	Id        string    `json:"id"`
	TicketId  string    `json:"ticketId"`
	UserId    string    `json:"userId"`
	User      *User     `json:"user,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TicketHistory struct {
	Id        string       `json:"id"`
	TicketId  string       `json:"ticketId"`
	Field     HistoryField `json:"field"`
	OldValue  *string      `json:"oldValue"`
	NewValue  *string      `json:"newValue"`
	UserId    string       `json:"userId"`
	User      *User        `json:"user,omitempty"`
	CommentId *string      `json:"commentId"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Notification struct {
	Id        string    `json:"id"`
	UserId    string    `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TicketId  string    `json:"ticketId"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event адресовано комнате конкретного пользователя
type Event struct {
	UserId string          `json:"userId"`
	Name   string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// GoogleIdentity проверенные данные из Google ID token
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

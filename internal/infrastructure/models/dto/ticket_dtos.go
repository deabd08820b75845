package dto

import "github.com/niklvrr/TicketBoard/internal/domain"

type HistoryDTO struct {
	Id        string
	Field     domain.HistoryField
	OldValue  *string
	NewValue  *string
	UserId    string
	CommentId *string
	Message   string
}

type CreateTicketDTO struct {
	Id          string
	Title       string
	Description string
	Priority    domain.Priority
	Status      string
	BoardId     string
	ColumnId    string
	AssigneeId  *string
	CreatorId   string
	History     []*HistoryDTO
}

// UpdateTicketDTO: nil означает "поле не меняется".
// Для assignee отдельный флаг, потому что nil-значение снимает исполнителя.
type UpdateTicketDTO struct {
	TicketId    string
	Title       *string
	Description *string
	Priority    *domain.Priority
	ColumnId    *string
	Status      *string
	SetAssignee bool
	AssigneeId  *string
	History     []*HistoryDTO
}

type SearchTicketsDTO struct {
	UserId  string
	Query   string
	BoardId *string
	Limit   int
}

type CreateCommentDTO struct {
	Id       string
	TicketId string
	UserId   string
	Content  string
	History  *HistoryDTO
}

type UpdateCommentDTO struct {
	CommentId string
	Content   string
	History   *HistoryDTO
}

type DeleteCommentDTO struct {
	CommentId string
	History   *HistoryDTO
}

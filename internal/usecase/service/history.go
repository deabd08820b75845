package service

import (
	"github.com/google/uuid"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
)

var historyActions = map[domain.HistoryField]string{
	domain.HistoryCreated:        "created the ticket",
	domain.HistoryTitle:          "changed the title",
	domain.HistoryPriority:       "changed the priority",
	domain.HistoryAssignee:       "changed the assignee",
	domain.HistoryStatus:         "changed the status",
	domain.HistoryCommentAdded:   "added a comment",
	domain.HistoryCommentEdited:  "edited a comment",
	domain.HistoryCommentDeleted: "deleted a comment",
}

func historyMessage(field domain.HistoryField, actor *domain.User) string {
	action, ok := historyActions[field]
	if !ok {
		action = "updated the ticket"
	}
	return actor.DisplayName() + " " + action
}

func newHistory(field domain.HistoryField, actor *domain.User, oldValue, newValue *string) *dto.HistoryDTO {
	h := &dto.HistoryDTO{
		Id:       uuid.NewString(),
		Field:    field,
		OldValue: oldValue,
		NewValue: newValue,
		Message:  historyMessage(field, actor),
	}
	if actor != nil {
		h.UserId = actor.Id
	}
	return h
}

func strPtr(s string) *string {
	return &s
}

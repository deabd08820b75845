package dto

type CreateNotificationDTO struct {
	Id       string
	UserId   string
	Type     string
	Message  string
	TicketId string
}

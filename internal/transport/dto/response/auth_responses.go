package response

import "github.com/niklvrr/TicketBoard/internal/domain"

type UserResponse struct {
	Id           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		Id:           u.Id,
		Email:        u.Email,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
	}
}

func NewUserResponses(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

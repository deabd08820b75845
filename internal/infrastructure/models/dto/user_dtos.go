package dto

type CreateUserDTO struct {
	Id           string
	Email        string
	Name         string
	PasswordHash *string
	GoogleId     *string
}

type LinkGoogleDTO struct {
	UserId   string
	GoogleId string
}

// UpdateProfileDTO обновляет только непустые поля
type UpdateProfileDTO struct {
	UserId          string
	Name            *string
	ProfileImage    *string
	ProfileImageKey *string
}

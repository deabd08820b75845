package request

import "io"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

// ImageUpload файл из multipart формы
type ImageUpload struct {
	Content     io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type UpdateProfileRequest struct {
	ActorId string
	Name    *string
	Image   *ImageUpload
}

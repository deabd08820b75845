package handler

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
	"go.uber.org/zap"
)

const (
	profileImageField = "profileImage"
	multipartOverhead = 1 << 20
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	GoogleLogin(ctx context.Context, req *request.GoogleLoginRequest) (*response.AuthResponse, error)
	Me(ctx context.Context, userId string) (*response.UserResponse, error)
	ListUsers(ctx context.Context) ([]*response.UserResponse, error)
	UpdateProfile(ctx context.Context, req *request.UpdateProfileRequest) (*response.UserResponse, error)
}

type AuthHandler struct {
	svc          AuthService
	maxImageSize int64
	log          *zap.Logger
}

func NewAuthHandler(svc AuthService, maxImageSize int64, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		maxImageSize: maxImageSize,
		log:          log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.log.Info("register request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode request body", zap.Error(err))
		RespondError(w, err)
		return
	}

	resp, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		h.log.Warn("register failed", zap.Error(err))
		RespondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.log.Info("login request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), &req)
	if err != nil {
		h.log.Warn("login failed", zap.Error(err))
		RespondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.log.Info("googleLogin request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var req request.GoogleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		RespondError(w, err)
		return
	}

	resp, err := h.svc.GoogleLogin(r.Context(), &req)
	if err != nil {
		h.log.Warn("google login failed", zap.Error(err))
		RespondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Me(r.Context(), actorId(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateProfile принимает multipart форму с полями name и profileImage,
// либо JSON только с именем
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.log.Info("updateProfile request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	req := &request.UpdateProfileRequest{ActorId: actorId(r)}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := h.parseProfileForm(w, r, req); err != nil {
			h.log.Warn("failed to parse profile form", zap.Error(err))
			RespondError(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()
	} else {
		var body struct {
			Name *string `json:"name"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			RespondError(w, err)
			return
		}
		req.Name = body.Name
	}

	resp, err := h.svc.UpdateProfile(r.Context(), req)
	if err != nil {
		h.log.Warn("update profile failed", zap.String("user_id", req.ActorId), zap.Error(err))
		RespondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) parseProfileForm(w http.ResponseWriter, r *http.Request, req *request.UpdateProfileRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.WrapError(service.ErrImageTooLarge, err)
		}
		return service.WrapError(errMalformedBody, err)
	}

	if names, ok := r.MultipartForm.Value["name"]; ok && len(names) > 0 {
		req.Name = &names[0]
	}

	file, header, err := r.FormFile(profileImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return service.WrapError(errMalformedBody, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		// Браузер не всегда присылает тип, определяем по первым байтам
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, 0); err != nil {
			return service.WrapError(errMalformedBody, err)
		}
	}

	req.Image = &request.ImageUpload{
		Content:     file,
		Size:        header.Size,
		ContentType: contentType,
		Filename:    header.Filename,
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/repository"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	userCacheSize     = 1024
	userCacheTTL      = 30 * time.Second
	profileImageDir   = "profile-pics"
)

var (
	registerError      = errors.New("register error")
	loginError         = errors.New("login error")
	googleLoginError   = errors.New("google login error")
	getUserError       = errors.New("get user error")
	listUsersError     = errors.New("list users error")
	updateProfileError = errors.New("update profile error")
	issueTokenError    = errors.New("issue token error")
)

// Интерфейс репозитория
type UserRepository interface {
	Create(ctx context.Context, d *dto.CreateUserDTO) (*domain.User, error)
	GetById(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	LinkGoogle(ctx context.Context, d *dto.LinkGoogleDTO) (*domain.User, error)
	UpdateProfile(ctx context.Context, d *dto.UpdateProfileDTO) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type TokenIssuer interface {
	Issue(userId string) (string, error)
	Parse(token string) (string, error)
}

type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*domain.GoogleIdentity, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type ObjectStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type AuthService struct {
	repo         UserRepository
	tokens       TokenIssuer
	google       GoogleVerifier
	hasher       PasswordHasher
	storage      ObjectStorage
	maxImageSize int64
	cache        *expirable.LRU[string, *domain.User]
	log          *zap.Logger
}

// NewAuthService google и storage могут быть nil, тогда соответствующие операции отклоняются
func NewAuthService(
	repo UserRepository,
	tokens TokenIssuer,
	google GoogleVerifier,
	hasher PasswordHasher,
	storage ObjectStorage,
	maxImageSize int64,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		repo:         repo,
		tokens:       tokens,
		google:       google,
		hasher:       hasher,
		storage:      storage,
		maxImageSize: maxImageSize,
		cache:        expirable.NewLRU[string, *domain.User](userCacheSize, nil, userCacheTTL),
		log:          log,
	}
}

func (s *AuthService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	s.log.Info("register request accepted", zap.String("email", email))

	// Валидация
	if !validEmail(email) {
		return nil, invalidInput("Please enter a valid email")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalidInput("Password must be at least 6 characters long")
	}
	name := sanitizeText(req.Name)
	if name == "" {
		return nil, invalidInput("Name is required")
	}

	// Проверяем что email свободен
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", registerError, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", registerError, err)
	}

	// Запрос в бд
	user, err := s.repo.Create(ctx, &dto.CreateUserDTO{
		Id:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
	})
	if err != nil {
		s.log.Error("failed to register user", zap.String("email", email), zap.Error(err))
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, WrapError(ErrUserExists, err)
		}
		return nil, fmt.Errorf("%w: %w", registerError, err)
	}

	s.log.Info("user registered", zap.String("user_id", user.Id))
	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	s.log.Info("login request accepted", zap.String("email", email))

	if !validEmail(email) {
		return nil, invalidInput("Please enter a valid email")
	}
	if req.Password == "" {
		return nil, invalidInput("Password is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", loginError, err)
	}

	// У аккаунтов только через Google пароля нет
	if user.PasswordHash == nil || !s.hasher.Compare(*user.PasswordHash, req.Password) {
		s.log.Warn("invalid credentials", zap.String("user_id", user.Id))
		return nil, ErrInvalidCredentials
	}

	s.log.Info("user logged in", zap.String("user_id", user.Id))
	return s.authResponse(user)
}

func (s *AuthService) GoogleLogin(ctx context.Context, req *request.GoogleLoginRequest) (*response.AuthResponse, error) {
	s.log.Info("google login request accepted")

	if req.Credential == "" {
		return nil, ErrMissingCredential
	}
	if s.google == nil {
		return nil, ErrGoogleNotConfigured
	}

	identity, err := s.google.Verify(ctx, req.Credential)
	if err != nil {
		s.log.Warn("google token rejected", zap.Error(err))
		return nil, WrapError(ErrInvalidGoogleToken, err)
	}

	email := normalizeEmail(identity.Email)
	user, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Первый вход, создаём аккаунт без пароля
		user, err = s.repo.Create(ctx, &dto.CreateUserDTO{
			Id:       uuid.NewString(),
			Email:    email,
			Name:     sanitizeText(identity.Name),
			GoogleId: &identity.Subject,
		})
		if err != nil {
			s.log.Error("failed to create google user", zap.String("email", email), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", googleLoginError, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %w", googleLoginError, err)
	case user.GoogleId == nil:
		user, err = s.repo.LinkGoogle(ctx, &dto.LinkGoogleDTO{UserId: user.Id, GoogleId: identity.Subject})
		if err != nil {
			s.log.Error("failed to link google account", zap.String("email", email), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", googleLoginError, err)
		}
	}

	s.log.Info("google login succeeded", zap.String("user_id", user.Id))
	return s.authResponse(user)
}

// Authenticate возвращает владельца сессионного токена
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}

	userId, err := s.tokens.Parse(token)
	if err != nil {
		return nil, WrapError(ErrInvalidToken, err)
	}

	if user, ok := s.cache.Get(userId); ok {
		return user, nil
	}

	user, err := s.repo.GetById(ctx, userId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrUnknownUser, err)
		}
		return nil, fmt.Errorf("%w: %w", getUserError, err)
	}

	s.cache.Add(userId, user)
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userId string) (*response.UserResponse, error) {
	user, err := s.repo.GetById(ctx, userId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrUserNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", getUserError, err)
	}
	return response.NewUserResponse(user), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*response.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", listUsersError, err)
	}
	return response.NewUserResponses(users), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	s.log.Info("update profile request accepted",
		zap.String("user_id", req.ActorId),
		zap.Bool("has_name", req.Name != nil),
		zap.Bool("has_image", req.Image != nil),
	)

	current, err := s.repo.GetById(ctx, req.ActorId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrUserNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", updateProfileError, err)
	}

	// Собираем dto
	d := &dto.UpdateProfileDTO{UserId: current.Id}
	if req.Name != nil {
		name := sanitizeText(*req.Name)
		if name == "" {
			return nil, invalidInput("Name is required")
		}
		d.Name = &name
	}

	if req.Image != nil {
		url, key, err := s.storeImage(ctx, current, req.Image)
		if err != nil {
			return nil, err
		}
		d.ProfileImage = &url
		d.ProfileImageKey = &key
	}

	// Запрос в бд
	user, err := s.repo.UpdateProfile(ctx, d)
	if err != nil {
		s.log.Error("failed to update profile", zap.String("user_id", current.Id), zap.Error(err))
		// Новый объект никому не принадлежит
		if d.ProfileImageKey != nil && *d.ProfileImageKey != previousKey(current) {
			s.deleteImage(ctx, current.Id, *d.ProfileImageKey)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrUserNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", updateProfileError, err)
	}

	// Старый объект удаляется только после записи нового ключа
	if old := previousKey(current); d.ProfileImageKey != nil && old != "" && old != *d.ProfileImageKey {
		s.deleteImage(ctx, current.Id, old)
	}

	s.cache.Remove(user.Id)
	s.log.Info("profile updated", zap.String("user_id", user.Id))
	return response.NewUserResponse(user), nil
}

func (s *AuthService) storeImage(ctx context.Context, user *domain.User, img *request.ImageUpload) (string, string, error) {
	if s.storage == nil {
		return "", "", ErrStorageNotConfigured
	}
	if img.Size > s.maxImageSize {
		return "", "", ErrImageTooLarge
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", "", ErrInvalidImage
	}

	key := fmt.Sprintf("%s/%s/profile%s", profileImageDir, user.Id, imageExt(img))
	url, err := s.storage.Save(ctx, key, img.Content, img.Size, img.ContentType)
	if err != nil {
		s.log.Error("failed to store profile image", zap.String("user_id", user.Id), zap.Error(err))
		return "", "", fmt.Errorf("%w: %w", updateProfileError, err)
	}
	return url, key, nil
}

func (s *AuthService) deleteImage(ctx context.Context, userId, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete profile image",
			zap.String("user_id", userId),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func previousKey(user *domain.User) string {
	if user.ProfileImageKey == nil {
		return ""
	}
	return *user.ProfileImageKey
}

func (s *AuthService) authResponse(user *domain.User) (*response.AuthResponse, error) {
	token, err := s.tokens.Issue(user.Id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", issueTokenError, err)
	}
	return &response.AuthResponse{
		Token: token,
		User:  response.NewUserResponse(user),
	}, nil
}

func imageExt(img *request.ImageUpload) string {
	if ext := strings.ToLower(path.Ext(img.Filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(img.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, "@")
}

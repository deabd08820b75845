package service

import (
	"context"
	"io"

	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/models/dto"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, d *dto.CreateUserDTO) (*domain.User, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetById(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) LinkGoogle(ctx context.Context, d *dto.LinkGoogleDTO) (*domain.User, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, d *dto.UpdateProfileDTO) (*domain.User, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockTokenIssuer мок выпуска токенов
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userId string) (string, error) {
	args := m.Called(userId)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Parse(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// MockGoogleVerifier мок проверки Google токена
type MockGoogleVerifier struct {
	mock.Mock
}

func (m *MockGoogleVerifier) Verify(ctx context.Context, credential string) (*domain.GoogleIdentity, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoogleIdentity), args.Error(1)
}

// plainHasher хеширует префиксом, чтобы тесты не тратили время на bcrypt
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) bool { return hash == "hashed:"+password }

// MockObjectStorage мок хранилища изображений
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockBoardRepository мок репозитория досок
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) Create(ctx context.Context, d *dto.CreateBoardDTO) (*domain.Board, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardRepository) ListForMember(ctx context.Context, userId string) ([]*domain.Board, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Board), args.Error(1)
}

func (m *MockBoardRepository) GetForMember(ctx context.Context, boardId, userId string) (*domain.Board, error) {
	args := m.Called(ctx, boardId, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardRepository) Update(ctx context.Context, d *dto.UpdateBoardDTO) (*domain.Board, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardRepository) Delete(ctx context.Context, boardId string) error {
	return m.Called(ctx, boardId).Error(0)
}

func (m *MockBoardRepository) AddMember(ctx context.Context, boardId, userId string) error {
	return m.Called(ctx, boardId, userId).Error(0)
}

func (m *MockBoardRepository) CreateColumn(ctx context.Context, d *dto.CreateColumnDTO) (*domain.Column, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Column), args.Error(1)
}

func (m *MockBoardRepository) GetColumn(ctx context.Context, boardId, columnId string) (*domain.Column, error) {
	args := m.Called(ctx, boardId, columnId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Column), args.Error(1)
}

func (m *MockBoardRepository) UpdateColumn(ctx context.Context, d *dto.UpdateColumnDTO) (*domain.Column, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Column), args.Error(1)
}

func (m *MockBoardRepository) DeleteColumn(ctx context.Context, boardId, columnId string) error {
	return m.Called(ctx, boardId, columnId).Error(0)
}

func (m *MockBoardRepository) ReorderColumns(ctx context.Context, d *dto.ReorderColumnsDTO) error {
	return m.Called(ctx, d).Error(0)
}

// MockTicketRepository мок репозитория тикетов
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, d *dto.CreateTicketDTO) (*domain.Ticket, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetForMember(ctx context.Context, ticketId, userId string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketId, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByBoard(ctx context.Context, boardId string) ([]*domain.Ticket, error) {
	args := m.Called(ctx, boardId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, d *dto.UpdateTicketDTO) (*domain.Ticket, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Delete(ctx context.Context, ticketId string) error {
	return m.Called(ctx, ticketId).Error(0)
}

func (m *MockTicketRepository) Search(ctx context.Context, d *dto.SearchTicketsDTO) ([]*domain.Ticket, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) AddWatcher(ctx context.Context, ticketId, userId string) ([]*domain.User, error) {
	args := m.Called(ctx, ticketId, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockTicketRepository) RemoveWatcher(ctx context.Context, ticketId, userId string) ([]*domain.User, error) {
	args := m.Called(ctx, ticketId, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockTicketRepository) ListHistory(ctx context.Context, ticketId string) ([]*domain.TicketHistory, error) {
	args := m.Called(ctx, ticketId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketHistory), args.Error(1)
}

// MockCommentRepository мок репозитория комментариев
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, d *dto.CreateCommentDTO) (*domain.Comment, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, d *dto.UpdateCommentDTO) (*domain.Comment, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, d *dto.DeleteCommentDTO) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockCommentRepository) GetById(ctx context.Context, commentId string) (*domain.Comment, error) {
	args := m.Called(ctx, commentId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByTicket(ctx context.Context, ticketId string) ([]*domain.Comment, error) {
	args := m.Called(ctx, ticketId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

// MockNotificationRepository мок репозитория уведомлений
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateMany(ctx context.Context, ds []*dto.CreateNotificationDTO) ([]*domain.Notification, error) {
	args := m.Called(ctx, ds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userId string, limit int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userId, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userId string) (*domain.Notification, error) {
	args := m.Called(ctx, id, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher мок доставки событий
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, userId, event string, payload any) error {
	return m.Called(ctx, userId, event, payload).Error(0)
}

// MockNotifier мок рассылки уведомлений
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) FanOut(ctx context.Context, ticket *domain.Ticket, actor *domain.User, event string, payload any) {
	m.Called(ctx, ticket, actor, event, payload)
}

func (m *MockNotifier) Broadcast(ctx context.Context, userIds []string, event string, payload any) {
	m.Called(ctx, userIds, event, payload)
}

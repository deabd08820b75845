package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niklvrr/TicketBoard/internal/domain"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/request"
	"github.com/niklvrr/TicketBoard/internal/transport/dto/response"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBoardService struct {
	mock.Mock
}

func (m *MockBoardService) CreateBoard(ctx context.Context, req *request.CreateBoardRequest) (*domain.Board, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardService) ListBoards(ctx context.Context, actorId string) ([]*domain.Board, error) {
	args := m.Called(ctx, actorId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Board), args.Error(1)
}

func (m *MockBoardService) GetBoard(ctx context.Context, actorId, boardId string) (*domain.Board, error) {
	args := m.Called(ctx, actorId, boardId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardService) UpdateBoard(ctx context.Context, req *request.UpdateBoardRequest) (*domain.Board, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardService) DeleteBoard(ctx context.Context, actorId, boardId string) error {
	return m.Called(ctx, actorId, boardId).Error(0)
}

func (m *MockBoardService) AddMember(ctx context.Context, req *request.AddMemberRequest) (*domain.Board, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardService) CreateColumn(ctx context.Context, req *request.CreateColumnRequest) (*domain.Column, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Column), args.Error(1)
}

func (m *MockBoardService) UpdateColumn(ctx context.Context, req *request.UpdateColumnRequest) (*domain.Column, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Column), args.Error(1)
}

func (m *MockBoardService) DeleteColumn(ctx context.Context, actorId, boardId, columnId string) error {
	return m.Called(ctx, actorId, boardId, columnId).Error(0)
}

func (m *MockBoardService) ReorderColumns(ctx context.Context, req *request.ReorderColumnsRequest) (*domain.Board, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func TestBoardHandler_CreateBoard_Success(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())

	mockService.On("CreateBoard", mock.Anything, mock.MatchedBy(func(r *request.CreateBoardRequest) bool {
		return r.ActorId == testActorId && r.Name == "Platform"
	})).Return(&domain.Board{Id: testBoardId, Name: "Platform"}, nil)

	w := httptest.NewRecorder()
	handler.CreateBoard(w, newRequest(t, http.MethodPost, "/api/boards", map[string]string{"name": "Platform"}, nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	var result domain.Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, testBoardId, result.Id)
	mockService.AssertExpectations(t)
}

func TestBoardHandler_GetBoard_NotFound(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())

	mockService.On("GetBoard", mock.Anything, testActorId, testBoardId).Return(nil, service.ErrBoardNotFound)

	w := httptest.NewRecorder()
	handler.GetBoard(w, newRequest(t, http.MethodGet, "/api/boards/"+testBoardId, nil, map[string]string{"boardId": testBoardId}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Board not found", decodeError(t, w).Message)
}

func TestBoardHandler_DeleteBoard(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())

	mockService.On("DeleteBoard", mock.Anything, testActorId, testBoardId).Return(nil)

	w := httptest.NewRecorder()
	handler.DeleteBoard(w, newRequest(t, http.MethodDelete, "/api/boards/"+testBoardId, nil, map[string]string{"boardId": testBoardId}))

	assert.Equal(t, http.StatusOK, w.Code)
	var result response.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Board deleted successfully", result.Message)
}

func TestBoardHandler_CreateColumn_Limit(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())

	mockService.On("CreateColumn", mock.Anything, mock.MatchedBy(func(r *request.CreateColumnRequest) bool {
		return r.BoardId == testBoardId && r.Name == "Extra"
	})).Return(nil, service.ErrColumnLimit)

	w := httptest.NewRecorder()
	handler.CreateColumn(w, newRequest(t, http.MethodPost, "/api/boards/"+testBoardId+"/columns",
		map[string]string{"name": "Extra"}, map[string]string{"boardId": testBoardId}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CodeColumnLimit, decodeError(t, w).Code)
}

func TestBoardHandler_UpdateColumn_PassesPathParams(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())
	columnId := "00000000-0000-0000-0000-000000000001"

	mockService.On("UpdateColumn", mock.Anything, mock.MatchedBy(func(r *request.UpdateColumnRequest) bool {
		return r.BoardId == testBoardId && r.ColumnId == columnId &&
			r.Order != nil && *r.Order == 2 && r.Name == nil
	})).Return(&domain.Column{Id: columnId, Order: 2}, nil)

	w := httptest.NewRecorder()
	handler.UpdateColumn(w, newRequest(t, http.MethodPut, "/api/boards/"+testBoardId+"/columns/"+columnId,
		map[string]int{"order": 2}, map[string]string{"boardId": testBoardId, "columnId": columnId}))

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBoardHandler_DeleteColumn_NotEmpty(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())
	columnId := "00000000-0000-0000-0000-000000000001"

	mockService.On("DeleteColumn", mock.Anything, testActorId, testBoardId, columnId).Return(service.ErrColumnNotEmpty)

	w := httptest.NewRecorder()
	handler.DeleteColumn(w, newRequest(t, http.MethodDelete, "/", nil,
		map[string]string{"boardId": testBoardId, "columnId": columnId}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CodeColumnNotEmpty, decodeError(t, w).Code)
}

func TestBoardHandler_ReorderColumns(t *testing.T) {
	mockService := new(MockBoardService)
	handler := NewBoardHandler(mockService, zap.NewNop())
	ids := []string{"c2", "c1"}

	mockService.On("ReorderColumns", mock.Anything, &request.ReorderColumnsRequest{
		ActorId: testActorId, BoardId: testBoardId, ColumnIds: ids,
	}).Return(&domain.Board{Id: testBoardId}, nil)

	w := httptest.NewRecorder()
	handler.ReorderColumns(w, newRequest(t, http.MethodPut, "/", map[string][]string{"columnIds": ids},
		map[string]string{"boardId": testBoardId}))

	assert.Equal(t, http.StatusOK, w.Code)
	var result response.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Columns reordered successfully", result.Message)
}

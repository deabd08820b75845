package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/niklvrr/TicketBoard/internal/config"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/auth"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/db"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/realtime"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/redisclient"
	"github.com/niklvrr/TicketBoard/internal/infrastructure/repository"
	"github.com/niklvrr/TicketBoard/internal/transport"
	"github.com/niklvrr/TicketBoard/internal/transport/handler"
	"github.com/niklvrr/TicketBoard/internal/usecase/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	testServer *httptest.Server
	testDB     *postgres.PostgresContainer
	testRedis  *miniredis.Miniredis
	dbURL      string
)

// allowAll не ограничивает запросы, квоты проверяются в unit тестах
type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}

// migrationsPath ищет каталог миграций относительно tests/e2e
func migrationsPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	if filepath.Base(wd) == "e2e" {
		return "file://" + filepath.Join(wd, "..", "..", "migrations"), nil
	}
	return "file://" + filepath.Join(wd, "migrations"), nil
}

// setupTestServer собирает приложение так же, как cmd/main.go
func setupTestServer(ctx context.Context, dbURL string, rc *redis.Client) (*httptest.Server, error) {
	logger := zap.NewNop()

	path, err := migrationsPath()
	if err != nil {
		return nil, err
	}

	pool, err := db.NewDatabase(ctx, dbURL, path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool, logger)
	boardRepo := repository.NewBoardRepository(pool, logger)
	ticketRepo := repository.NewTicketRepository(pool, logger)
	commentRepo := repository.NewCommentRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)

	// Realtime через miniredis
	hub := realtime.NewHub(logger)
	broker := realtime.NewBroker(rc, hub, realtime.DefaultChannel, logger)
	go broker.Run(ctx)

	// Сервисы
	authService := service.NewAuthService(
		userRepo,
		auth.NewTokenManager("e2e-secret", time.Hour),
		nil,
		auth.NewBcryptHasher(4),
		nil,
		5<<20,
		logger,
	)
	boardService := service.NewBoardService(boardRepo, ticketRepo, userRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, broker, logger)
	ticketService := service.NewTicketService(ticketRepo, commentRepo, boardRepo, notificationService, logger)

	router := transport.NewRouter(&transport.Handlers{
		Auth:          handler.NewAuthHandler(authService, 5<<20, logger),
		Board:         handler.NewBoardHandler(boardService, logger),
		Ticket:        handler.NewTicketHandler(ticketService, logger),
		Notification:  handler.NewNotificationHandler(notificationService, logger),
		Events:        handler.NewEventsHandler(hub, logger),
		Health:        handler.NewHealthHandler(pool, logger),
		Authenticator: authService,
		RateLimiter:   allowAll{},
	}, transport.RouterConfig{
		CorsOrigins:    []string{"*"},
		RequestTimeout: 10 * time.Second,
	}, logger)

	return httptest.NewServer(router), nil
}

// TestMain настраивает тестовое окружение
func TestMain(m *testing.M) {
	ctx, cancel := context.WithCancel(context.Background())

	var err error
	testDB, err = postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to start test container: %v", err))
	}

	dbURL, err = testDB.ConnectionString(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to get connection string: %v", err))
	}
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		panic(fmt.Sprintf("failed to parse connection string: %v", err))
	}
	query := parsedURL.Query()
	query.Set("sslmode", "disable")
	parsedURL.RawQuery = query.Encode()
	dbURL = parsedURL.String()

	testRedis, err = miniredis.Run()
	if err != nil {
		panic(fmt.Sprintf("failed to start miniredis: %v", err))
	}
	rc, err := redisclient.NewRedisClient(ctx, &config.RedisConfig{Addr: testRedis.Addr()}, zap.NewNop())
	if err != nil {
		panic(fmt.Sprintf("failed to connect to miniredis: %v", err))
	}

	testServer, err = setupTestServer(ctx, dbURL, rc)
	if err != nil {
		panic(fmt.Sprintf("failed to setup test server: %v", err))
	}

	code := m.Run()

	// Очистка
	cancel()
	testServer.Close()
	_ = rc.Close()
	testRedis.Close()
	if err := testDB.Terminate(context.Background()); err != nil {
		panic(fmt.Sprintf("failed to terminate container: %v", err))
	}

	os.Exit(code)
}

// ==================== ХЕЛПЕРЫ ====================

type testUser struct {
	Id    string
	Email string
	Name  string
	Token string
}

var userSeq int

// registerUser регистрирует пользователя с уникальным email
func registerUser(t *testing.T, name string) *testUser {
	t.Helper()
	userSeq++
	email := fmt.Sprintf("%s.%d.%d@example.com", name, time.Now().UnixNano(), userSeq)

	resp := doRequest(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": "secret123",
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var authResp struct {
		Token string `json:"token"`
		User  struct {
			Id    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	decodeBody(t, resp, &authResp)
	require.NotEmpty(t, authResp.Token)

	return &testUser{
		Id:    authResp.User.Id,
		Email: authResp.User.Email,
		Name:  authResp.User.Name,
		Token: authResp.Token,
	}
}

// doRequest отправляет JSON запрос, body может быть nil
func doRequest(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, testServer.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v), "Response must be valid JSON")
}

// validateErrorResponse проверяет структуру ErrorResponse
func validateErrorResponse(t *testing.T, resp *http.Response, expectedCode string, expectedStatus int) {
	t.Helper()
	assert.Equal(t, expectedStatus, resp.StatusCode, "HTTP status code mismatch")

	var errorResp map[string]any
	decodeBody(t, resp, &errorResp)

	require.Contains(t, errorResp, "error", "ErrorResponse must have error field")
	errorObj := errorResp["error"].(map[string]any)
	require.Contains(t, errorObj, "code")
	require.Contains(t, errorObj, "message")

	assert.Equal(t, expectedCode, errorObj["code"], "Error code mismatch")
	assert.IsType(t, "", errorObj["message"])
}

type column struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type board struct {
	Id      string    `json:"id"`
	Name    string    `json:"name"`
	Columns []*column `json:"columns"`
	Members []struct {
		Id string `json:"id"`
	} `json:"members"`
	Tickets []*ticket `json:"tickets"`
}

type ticket struct {
	Id         string  `json:"id"`
	Title      string  `json:"title"`
	Priority   string  `json:"priority"`
	Status     string  `json:"status"`
	BoardId    string  `json:"boardId"`
	ColumnId   string  `json:"columnId"`
	AssigneeId *string `json:"assigneeId"`
	Watchers   []struct {
		Id string `json:"id"`
	} `json:"watchers"`
	Comments []struct {
		Id      string `json:"id"`
		Content string `json:"content"`
	} `json:"comments"`
	History []struct {
		Field    string  `json:"field"`
		OldValue *string `json:"oldValue"`
		NewValue *string `json:"newValue"`
	} `json:"history"`
}

func createBoard(t *testing.T, owner *testUser, name string) *board {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/api/boards", owner.Token, map[string]any{
		"name":        name,
		"description": "e2e board",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var b board
	decodeBody(t, resp, &b)
	return &b
}

func addMember(t *testing.T, owner *testUser, boardId, userId string) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/api/boards/"+boardId+"/members", owner.Token, map[string]any{
		"userId": userId,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func createTicket(t *testing.T, actor *testUser, boardId, title string) *ticket {
	t.Helper()
	resp := doRequest(t, http.MethodPost, "/api/tickets", actor.Token, map[string]any{
		"title":    title,
		"priority": "MEDIUM",
		"boardId":  boardId,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tk ticket
	decodeBody(t, resp, &tk)
	return &tk
}

// TestHealthCheck проверяет health check эндпоинт
func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(testServer.URL + "/health")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Health check must return 200")

	var result map[string]string
	decodeBody(t, resp, &result)
	assert.Equal(t, "ok", result["status"])
}

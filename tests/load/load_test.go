//go:build load
// +build load

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	duration       = 30 * time.Second
	maxLatencyP99  = 300 * time.Millisecond
	minSuccessRate = 0.999 // 99.9%
	// Допустимое отклонение RPS от целевого значения: ±10%
	rpsTolerance = 0.1
)

// Структура для хранения метрик нагрузочного тестирования
type loadMetrics struct {
	totalRequests   int
	successRequests int
	errorRequests   int
	latencies       []time.Duration
}

// requestFactory собирает очередной запрос сценария
type requestFactory func() (*http.Request, error)

// Тест нагрузочного тестирования создания тикетов
func TestLoad_CreateTicket(t *testing.T) {
	s := prepare(t)

	runLoad(t, "CreateTicket", func() (*http.Request, error) {
		body := mustJSON(CreateTicketRequest{Title: "Load ticket", Priority: "LOW", BoardId: s.boardId})
		req, err := http.NewRequest(http.MethodPost, baseURL+"/api/tickets", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header = authHeader(s.token)
		return req, nil
	})
}

// Тест нагрузочного тестирования чтения доски с тикетами
func TestLoad_GetBoard(t *testing.T) {
	s := prepare(t)

	runLoad(t, "GetBoard", func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/api/boards/"+s.boardId, nil)
		if err != nil {
			return nil, err
		}
		req.Header = authHeader(s.token)
		return req, nil
	})
}

// Тест нагрузочного тестирования поиска
func TestLoad_Search(t *testing.T) {
	s := prepare(t)

	runLoad(t, "Search", func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/api/tickets/search?q=load", nil)
		if err != nil {
			return nil, err
		}
		req.Header = authHeader(s.token)
		return req, nil
	})
}

// prepare проверяет доступность сервера и готовит пользователя с доской
func prepare(t *testing.T) *session {
	if testing.Short() {
		t.Skip("Пропуск нагрузочного теста в коротком режиме")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	healthResp, err := client.Get(baseURL + "/health")
	if err != nil {
		t.Fatalf("Сервер не запущен по адресу %s. Пожалуйста, запустите сервер командой: go run ./cmd\nОшибка: %v", baseURL, err)
	}
	healthResp.Body.Close()
	if healthResp.StatusCode != http.StatusOK {
		t.Fatalf("Проверка здоровья сервера не прошла со статусом %d", healthResp.StatusCode)
	}

	s, err := setupSession()
	require.NoError(t, err, "Не удалось подготовить тестовые данные")
	return s
}

func runLoad(t *testing.T, name string, next requestFactory) {
	loadClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	m := &loadMetrics{
		latencies: make([]time.Duration, 0),
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	// Интервал между запросами для достижения целевого RPS
	interval := time.Second / time.Duration(targetRPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			req, err := next()
			require.NoError(t, err)

			reqStart := time.Now()
			resp, err := loadClient.Do(req)
			latency := time.Since(reqStart)
			m.latencies = append(m.latencies, latency)
			m.totalRequests++

			if err != nil {
				m.errorRequests++
				if m.errorRequests <= 3 {
					t.Logf("Ошибка запроса: %v", err)
				}
				continue
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				m.successRequests++
			} else {
				m.errorRequests++
				if m.errorRequests <= 3 {
					body, _ := io.ReadAll(resp.Body)
					t.Logf("Запрос не удался: status=%d, body=%s", resp.StatusCode, string(body))
				}
			}
			resp.Body.Close()
		}
	}

	elapsed := time.Since(start)
	logMetrics(t, name, m, elapsed)
	validateMetrics(t, m, elapsed)
}

// Вывод метрик нагрузочного тестирования
func logMetrics(t *testing.T, testName string, m *loadMetrics, elapsed time.Duration) {
	if len(m.latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sortDurations(sorted)

	p50 := sorted[len(sorted)*50/100]
	p95 := sorted[len(sorted)*95/100]
	p99 := sorted[len(sorted)*99/100]

	avgLatency := time.Duration(0)
	for _, lat := range m.latencies {
		avgLatency += lat
	}
	avgLatency /= time.Duration(len(m.latencies))

	successRate := float64(m.successRequests) / float64(m.totalRequests)
	actualRPS := float64(m.totalRequests) / elapsed.Seconds()

	t.Logf("\n=== Результаты нагрузочного теста: %s ===", testName)
	t.Logf("Длительность: %v", elapsed)
	t.Logf("Всего запросов: %d", m.totalRequests)
	t.Logf("Успешных запросов: %d", m.successRequests)
	t.Logf("Запросов с ошибками: %d", m.errorRequests)
	t.Logf("Процент успешности: %.4f%%", successRate*100)
	t.Logf("Фактический RPS: %.2f", actualRPS)
	t.Logf("Средняя задержка: %v", avgLatency)
	t.Logf("P50 задержка: %v", p50)
	t.Logf("P95 задержка: %v", p95)
	t.Logf("P99 задержка: %v", p99)
}

// Валидация метрик по целевым SLI
func validateMetrics(t *testing.T, m *loadMetrics, elapsed time.Duration) {
	if len(m.latencies) == 0 {
		return
	}

	successRate := float64(m.successRequests) / float64(m.totalRequests)

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sortDurations(sorted)
	p99 := sorted[len(sorted)*99/100]

	actualRPS := float64(m.totalRequests) / elapsed.Seconds()
	minRPS := float64(targetRPS) * (1 - rpsTolerance)
	maxRPS := float64(targetRPS) * (1 + rpsTolerance)

	require.GreaterOrEqual(t, successRate, minSuccessRate,
		"Процент успешности %.4f%% ниже требуемого %.4f%%", successRate*100, minSuccessRate*100)

	require.LessOrEqual(t, p99, maxLatencyP99,
		"P99 задержка %v превышает максимальную %v", p99, maxLatencyP99)

	require.GreaterOrEqual(t, actualRPS, minRPS,
		"Фактический RPS %.2f ниже минимального %.2f (целевой: %.2f)", actualRPS, minRPS, float64(targetRPS))

	require.LessOrEqual(t, actualRPS, maxRPS,
		"Фактический RPS %.2f превышает максимальный %.2f (целевой: %.2f)", actualRPS, maxRPS, float64(targetRPS))
}

// Сортировка массива задержек по возрастанию
func sortDurations(durations []time.Duration) {
	sort.Slice(durations, func(i, j int) bool {
		return durations[i] < durations[j]
	})
}

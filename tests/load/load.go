package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Квота лимитера по умолчанию 60 запросов в минуту на IP,
// для прогона поднимите RATE_LIMIT_POINTS на сервере
const (
	baseURL      = "http://localhost:8080"
	targetRPS    = 5
	testDuration = 2 * time.Minute
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type CreateBoardRequest struct {
	Name string `json:"name"`
}

type CreateTicketRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
	BoardId  string `json:"boardId"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

// session токен и заготовленные сущности для сценариев
type session struct {
	token    string
	boardId  string
	ticketId string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run load.go <scenario>")
		fmt.Println("Scenarios: health, boards, tickets, search, all")
		os.Exit(1)
	}

	scenario := os.Args[1]

	var metrics vegeta.Metrics
	var err error

	if scenario == "health" {
		metrics, err = testHealth()
	} else {
		var s *session
		s, err = setupSession()
		if err != nil {
			fmt.Printf("Setup error: %v\n", err)
			os.Exit(1)
		}

		switch scenario {
		case "boards":
			metrics, err = testBoards(s)
		case "tickets":
			metrics, err = testTickets(s)
		case "search":
			metrics, err = testSearch(s)
		case "all":
			metrics, err = testAll(s)
		default:
			fmt.Printf("Unknown scenario: %s\n", scenario)
			os.Exit(1)
		}
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	printMetrics(metrics)
}

func testHealth() (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: "GET",
		URL:    baseURL + "/health",
	})

	return runAttack(targeter, "Health Check")
}

func testBoards(s *session) (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/api/boards",
			Header: authHeader(s.token),
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/api/boards/" + s.boardId,
			Header: authHeader(s.token),
		},
	)

	return runAttack(targeter, "Board Operations")
}

func testTickets(s *session) (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "POST",
			URL:    baseURL + "/api/tickets",
			Body:   mustJSON(CreateTicketRequest{Title: "Load ticket", Priority: "LOW", BoardId: s.boardId}),
			Header: authHeader(s.token),
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/api/tickets/" + s.ticketId,
			Header: authHeader(s.token),
		},
		vegeta.Target{
			Method: "POST",
			URL:    baseURL + "/api/tickets/" + s.ticketId + "/comments",
			Body:   mustJSON(CommentRequest{Content: "Load comment"}),
			Header: authHeader(s.token),
		},
	)

	return runAttack(targeter, "Ticket Operations")
}

func testSearch(s *session) (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: "GET",
		URL:    baseURL + "/api/tickets/search?q=load",
		Header: authHeader(s.token),
	})

	return runAttack(targeter, "Search")
}

func testAll(s *session) (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/health",
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/api/boards/" + s.boardId,
			Header: authHeader(s.token),
		},
		vegeta.Target{
			Method: "POST",
			URL:    baseURL + "/api/tickets",
			Body:   mustJSON(CreateTicketRequest{Title: "Load ticket", Priority: "HIGH", BoardId: s.boardId}),
			Header: authHeader(s.token),
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/api/tickets/search?q=load",
			Header: authHeader(s.token),
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/api/auth/notifications",
			Header: authHeader(s.token),
		},
	)

	return runAttack(targeter, "All Endpoints")
}

func runAttack(targeter vegeta.Targeter, name string) (vegeta.Metrics, error) {
	rate := vegeta.Rate{Freq: targetRPS, Per: time.Second}
	attacker := vegeta.NewAttacker()

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, testDuration, name) {
		metrics.Add(res)
	}
	metrics.Close()

	return metrics, nil
}

// setupSession регистрирует пользователя, создаёт доску и тикет
func setupSession() (*session, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	email := fmt.Sprintf("load_%d@example.com", time.Now().UnixNano())

	var auth struct {
		Token string `json:"token"`
	}
	err := postJSON(client, "/api/auth/register", "", RegisterRequest{
		Email:    email,
		Password: "load-secret",
		Name:     "Load Tester",
	}, &auth)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	var board struct {
		Id string `json:"id"`
	}
	if err := postJSON(client, "/api/boards", auth.Token, CreateBoardRequest{Name: "Load board"}, &board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	var ticket struct {
		Id string `json:"id"`
	}
	err = postJSON(client, "/api/tickets", auth.Token, CreateTicketRequest{
		Title:    "Load seed ticket",
		Priority: "MEDIUM",
		BoardId:  board.Id,
	}, &ticket)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	return &session{token: auth.Token, boardId: board.Id, ticketId: ticket.Id}, nil
}

func postJSON(client *http.Client, path, token string, body, out any) error {
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(mustJSON(body)))
	if err != nil {
		return err
	}
	req.Header = authHeader(token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func authHeader(token string) http.Header {
	h := http.Header{"Content-Type": []string{"application/json"}}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func mustJSON(v any) []byte {
	body, _ := json.Marshal(v)
	return body
}

func printMetrics(metrics vegeta.Metrics) {
	fmt.Printf("\n=== Load Test Results ===\n\n")
	fmt.Printf("Requests Total:     %d\n", metrics.Requests)
	fmt.Printf("Success Rate:       %.2f%%\n", metrics.Success*100)
	fmt.Printf("Duration:           %v\n", metrics.Duration)

	if metrics.Requests > 0 {
		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Mean:             %v\n", metrics.Latencies.Mean)
		fmt.Printf("  P50:              %v\n", metrics.Latencies.P50)
		fmt.Printf("  P95:              %v\n", metrics.Latencies.P95)
		fmt.Printf("  P99:              %v\n", metrics.Latencies.P99)
		fmt.Printf("  Max:              %v\n", metrics.Latencies.Max)

		fmt.Printf("\nThroughput:\n")
		fmt.Printf("  Requests/sec:     %.2f\n", metrics.Rate)

		fmt.Printf("\nStatus Codes:\n")
		for code, count := range metrics.StatusCodes {
			fmt.Printf("  %s: %d\n", code, count)
		}

		fmt.Printf("\nErrors:\n")
		if len(metrics.Errors) > 0 {
			for _, err := range metrics.Errors {
				fmt.Printf("  %s\n", err)
			}
		} else {
			fmt.Printf("  None\n")
		}

		fmt.Printf("\nSLI Compliance:\n")
		p95ms := metrics.Latencies.P95.Seconds() * 1000
		successRate := metrics.Success * 100
		fmt.Printf("  P95 Latency:      %.2f ms (target: < 300ms) - %s\n",
			p95ms,
			checkStatus(p95ms < 300, "PASS", "FAIL"))
		fmt.Printf("  Success Rate:     %.2f%% (target: > 99.9%%) - %s\n",
			successRate,
			checkStatus(successRate >= 99.9, "PASS", "FAIL"))
	}
	fmt.Printf("\n")
}

func checkStatus(condition bool, pass, fail string) string {
	if condition {
		return pass
	}
	return fail
}

package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_BoardFlow(t *testing.T) {
	alice := registerUser(t, "Alice")
	bob := registerUser(t, "Bob")

	// 1. Новая доска получает колонки по умолчанию
	b := createBoard(t, alice, "Sprint board")
	assert.Equal(t, "Sprint board", b.Name)
	require.Len(t, b.Columns, 5)
	names := make([]string, 0, len(b.Columns))
	for i, c := range b.Columns {
		assert.Equal(t, i, c.Order)
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Backlog", "Ready for Dev", "In Development", "In QA", "Done"}, names)
	require.Len(t, b.Members, 1)
	assert.Equal(t, alice.Id, b.Members[0].Id)

	// 2. Чужая доска не видна
	resp := doRequest(t, http.MethodGet, "/api/boards/"+b.Id, bob.Token, nil)
	validateErrorResponse(t, resp, "NOT_FOUND", http.StatusNotFound)

	// 3. После добавления участника доска появляется в списке
	addMember(t, alice, b.Id, bob.Id)

	resp = doRequest(t, http.MethodGet, "/api/boards", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var boards []*board
	decodeBody(t, resp, &boards)
	require.Len(t, boards, 1)
	assert.Equal(t, b.Id, boards[0].Id)

	// 4. Переименование
	resp = doRequest(t, http.MethodPut, "/api/boards/"+b.Id, bob.Token, map[string]any{
		"name": "Renamed board",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated board
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Renamed board", updated.Name)

	// 5. Удаление
	resp = doRequest(t, http.MethodDelete, "/api/boards/"+b.Id, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/boards/"+b.Id, alice.Token, nil)
	validateErrorResponse(t, resp, "NOT_FOUND", http.StatusNotFound)
}

func TestE2E_AddUnknownMember(t *testing.T) {
	alice := registerUser(t, "Alice")
	b := createBoard(t, alice, "Members")

	resp := doRequest(t, http.MethodPost, "/api/boards/"+b.Id+"/members", alice.Token, map[string]any{
		"userId": "99999999-9999-9999-9999-999999999999",
	})
	validateErrorResponse(t, resp, "NOT_FOUND", http.StatusNotFound)
}

func TestE2E_ColumnFlow(t *testing.T) {
	alice := registerUser(t, "Alice")
	b := createBoard(t, alice, "Columns")
	base := "/api/boards/" + b.Id + "/columns"

	// 1. Шестая колонка допустима, седьмая нет
	resp := doRequest(t, http.MethodPost, base, alice.Token, map[string]any{"name": "Released"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var released column
	decodeBody(t, resp, &released)
	assert.Equal(t, 5, released.Order)

	resp = doRequest(t, http.MethodPost, base, alice.Token, map[string]any{"name": "Archived"})
	validateErrorResponse(t, resp, "COLUMN_LIMIT", http.StatusBadRequest)

	// 2. Переименование синхронизирует статус тикетов
	tk := createTicket(t, alice, b.Id, "Column ticket")
	assert.Equal(t, "Backlog", tk.Status)

	resp = doRequest(t, http.MethodPut, base+"/"+b.Columns[0].Id, alice.Token, map[string]any{"name": "Inbox"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/tickets/"+tk.Id, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got ticket
	decodeBody(t, resp, &got)
	assert.Equal(t, "Inbox", got.Status)

	// 3. Колонку с тикетами удалить нельзя
	resp = doRequest(t, http.MethodDelete, base+"/"+b.Columns[0].Id, alice.Token, nil)
	validateErrorResponse(t, resp, "COLUMN_NOT_EMPTY", http.StatusBadRequest)

	// 4. Пустую можно
	resp = doRequest(t, http.MethodDelete, base+"/"+released.Id, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 5. Переупорядочивание
	ids := make([]string, 0, len(b.Columns))
	for i := len(b.Columns) - 1; i >= 0; i-- {
		ids = append(ids, b.Columns[i].Id)
	}
	resp = doRequest(t, http.MethodPut, base+"/reorder", alice.Token, map[string]any{"columnIds": ids})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, "/api/boards/"+b.Id, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reordered board
	decodeBody(t, resp, &reordered)
	require.Len(t, reordered.Columns, len(ids))
	for i, c := range reordered.Columns {
		assert.Equal(t, ids[i], c.Id)
		assert.Equal(t, i, c.Order)
	}

	// 6. Неполный список отклоняется
	resp = doRequest(t, http.MethodPut, base+"/reorder", alice.Token, map[string]any{"columnIds": ids[:2]})
	validateErrorResponse(t, resp, "INVALID_INPUT", http.StatusBadRequest)
}

func TestE2E_DeleteLastColumn(t *testing.T) {
	alice := registerUser(t, "Alice")
	b := createBoard(t, alice, "Last column")
	base := "/api/boards/" + b.Id + "/columns/"

	for _, c := range b.Columns[1:] {
		resp := doRequest(t, http.MethodDelete, base+c.Id, alice.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doRequest(t, http.MethodDelete, base+b.Columns[0].Id, alice.Token, nil)
	validateErrorResponse(t, resp, "LAST_COLUMN", http.StatusBadRequest)
}

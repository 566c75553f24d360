package fakeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(
		WithUser("dev@staffhive.test", "s3cret"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func loginToken(t *testing.T, s *Server) string {
	t.Helper()
	rec, body := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "dev@staffhive.test",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	return data["access_token"].(string)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec, body := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "dev@staffhive.test",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.NotZero(t, data["expires_at"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)

	rec, body := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "dev@staffhive.test",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errBody["code"])
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	s := newTestServer(t)
	_, body := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "dev@staffhive.test",
		"password": "s3cret",
	})
	refresh := body["data"].(map[string]any)["refresh_token"].(string)

	rec, _ := doJSON(t, s, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, s, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEntityRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec, body := doJSON(t, s, http.MethodGet, "/lead", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = doJSON(t, s, http.MethodGet, "/lead", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCRUDRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	rec, body := doJSON(t, s, http.MethodPost, "/lead", token, map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body["data"].(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, created["created_at"])

	rec, body = doJSON(t, s, http.MethodGet, "/lead/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", body["data"].(map[string]any)["name"])

	// Updates merge and never overwrite the id.
	rec, body = doJSON(t, s, http.MethodPut, "/lead/"+id, token, map[string]any{"id": "spoofed", "status": "won"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := body["data"].(map[string]any)
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "Acme", updated["name"])
	assert.Equal(t, "won", updated["status"])

	rec, _ = doJSON(t, s, http.MethodDelete, "/lead/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, s, http.MethodGet, "/lead/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestListPaginates(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 25; i++ {
		s.Store().Seed("task", Record{"id": fmt.Sprintf("t%02d", i), "title": fmt.Sprintf("Task %d", i)})
	}
	token := loginToken(t, s)

	rec, body := doJSON(t, s, http.MethodGet, "/task?page=2&limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["items"], 10)
	assert.EqualValues(t, 25, data["total"])
	assert.EqualValues(t, 2, data["currentPage"])
	assert.EqualValues(t, 3, data["totalPages"])

	// The last page holds the remainder; limit=all disables slicing.
	_, body = doJSON(t, s, http.MethodGet, "/task?page=3&limit=10", token, nil)
	assert.Len(t, body["data"].(map[string]any)["items"], 5)
	_, body = doJSON(t, s, http.MethodGet, "/task?limit=all", token, nil)
	assert.Len(t, body["data"].(map[string]any)["items"], 25)
}

func TestListFiltersByField(t *testing.T) {
	s := newTestServer(t)
	s.Store().Seed("contact",
		Record{"id": "c1", "name": "Dana", "is_client": true},
		Record{"id": "c2", "name": "Sam", "is_client": false},
	)
	token := loginToken(t, s)

	_, body := doJSON(t, s, http.MethodGet, "/contact?is_client=true", token, nil)
	items := body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Dana", items[0].(map[string]any)["name"])
}

func TestListHolidayMonthFilter(t *testing.T) {
	s := newTestServer(t)
	s.Store().Seed("holiday",
		Record{"id": "h1", "name": "Founders Day", "date": "2024-11-05", "day_type": "full"},
		Record{"id": "h2", "name": "Year End", "start_date": "2024-12-30", "end_date": "2025-01-02", "day_type": "full"},
		Record{"id": "h3", "name": "Spring Break", "date": "2024-04-01", "day_type": "half"},
	)
	token := loginToken(t, s)

	_, body := doJSON(t, s, http.MethodGet, "/holiday?month=2024-11", token, nil)
	items := body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "h1", items[0].(map[string]any)["id"])

	// A range is matched by either endpoint.
	_, body = doJSON(t, s, http.MethodGet, "/holiday?month=2025-01", token, nil)
	items = body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "h2", items[0].(map[string]any)["id"])
}

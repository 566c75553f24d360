package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// testItem is the record type used across the api package tests.
type testItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (i testItem) EntityID() string { return i.ID }

// countingTokens hands out tok-1, tok-2, ... counting every fetch.
type countingTokens struct {
	calls atomic.Int32
}

func (c *countingTokens) Token() (*oauth2.Token, error) {
	n := c.calls.Add(1)
	return &oauth2.Token{AccessToken: "tok-" + string(rune('0'+n)), TokenType: "Bearer"}, nil
}

func writeEnvelope(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClientRefreshesOnceOn401(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if len(seen) == 1 {
			writeEnvelope(w, http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Token expired"}}`)
			return
		}
		writeEnvelope(w, http.StatusOK, `{"success":true,"data":{"id":"1","name":"Acme"}}`)
	}))
	defer server.Close()

	tokens := &countingTokens{}
	client := NewClient(server.URL, tokens)
	resource := NewResource[testItem](client, Descriptor{Name: "lead"})

	item, err := resource.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", item.Name)

	require.Len(t, seen, 2)
	assert.Equal(t, "Bearer tok-1", seen[0])
	assert.Equal(t, "Bearer tok-2", seen[1], "retry carries a freshly fetched token")
	assert.EqualValues(t, 2, tokens.calls.Load())
}

func TestClientSurfacesSecond401(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeEnvelope(w, http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Token expired"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, &countingTokens{})
	resource := NewResource[testItem](client, Descriptor{Name: "lead"})

	_, err := resource.Get(context.Background(), "1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 2, requests, "exactly one retry")
}

func TestClientNotFoundMatchesSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, `{"success":false,"error":{"code":"NOT_FOUND","message":"lead not found"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	resource := NewResource[testItem](client, Descriptor{Name: "lead"})

	_, err := resource.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "lead not found", apiErr.Message)
}

func TestClientPassesServerValidationThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnprocessableEntity,
			`{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Validation failed","details":{"name":"name is required"}}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	resource := NewResource[testItem](client, Descriptor{Name: "lead"})

	_, err := resource.Create(context.Background(), testItem{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "name is required", apiErr.Details["name"])
}

func TestDecodeEnvelopeNonJSONErrorBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       http.NoBody,
	}
	err := decodeEnvelope(resp, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestDecodeEnvelopeDataField(t *testing.T) {
	rec := httptest.NewRecorder()
	writeEnvelope(rec, http.StatusOK, `{"success":true,"data":{"id":"9","name":"Nine"}}`)

	var item testItem
	require.NoError(t, decodeEnvelope(rec.Result(), &item))
	assert.Equal(t, testItem{ID: "9", Name: "Nine"}, item)

	raw, _ := json.Marshal(item)
	assert.JSONEq(t, `{"id":"9","name":"Nine"}`, string(raw))
}

package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatContent(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
}

func TestComplete(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(chatContent(`{"answer": 42}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "key-1", BaseURL: srv.URL, Model: "test-model"})

	var out struct {
		Answer int `json:"answer"`
	}
	require.NoError(t, client.Complete(context.Background(), "sys", "user prompt", &out))

	assert.Equal(t, 42, out.Answer)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "sys", gotReq.Messages[0].Content)
	assert.Equal(t, "user prompt", gotReq.Messages[1].Content)
}

func TestCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	var out map[string]any
	err := client.Complete(context.Background(), "s", "p", &out)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCompleteConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	var out map[string]any
	err := client.Complete(context.Background(), "s", "p", &out)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCompleteMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatContent("this is not json"))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	var out map[string]any
	err := client.Complete(context.Background(), "s", "p", &out)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	var out map[string]any
	err := client.Complete(context.Background(), "s", "p", &out)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

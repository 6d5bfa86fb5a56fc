package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"bert-base-uncased","downloads":120}`))
	}))
	defer srv.Close()

	var out struct {
		Name      string `json:"name"`
		Downloads int    `json:"downloads"`
	}
	err := GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "bert-base-uncased", out.Name)
	assert.Equal(t, 120, out.Downloads)
}

func TestGetJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var out map[string]any
	err := GetJSON(context.Background(), srv.URL, &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetJSON_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out map[string]any
	err := GetJSON(context.Background(), srv.URL, &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetText_Token(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("# README"))
	}))
	defer srv.Close()

	body, err := GetText(context.Background(), srv.URL, "test-token")
	require.NoError(t, err)
	assert.Equal(t, "# README", body)
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := PostJSON(context.Background(), srv.URL, "", map[string]string{"q": "x"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestPostJSON_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out map[string]any
	err := PostJSON(context.Background(), srv.URL, "", nil, &out)
	assert.Error(t, err)
}

func TestOpen_StreamsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	body, size, err := Open(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, int64(7), size)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("model weights"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, Download(context.Background(), srv.URL, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "model weights", string(b))
}

func TestGetOAuthClient(t *testing.T) {
	c := GetOAuthClient(context.Background(), "abc123")
	require.NotNil(t, c)
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/config"
	"datasight/internal/dataset"
	apperrors "datasight/internal/errors"
)

func testTable() *dataset.Table {
	return &dataset.Table{
		Headers: []string{"city", "population"},
		Rows: [][]string{
			{"Moscow", "13010112"},
			{"Kazan", "1308660"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestBuildPrompt_LimitsRowsAndAligns(t *testing.T) {
	rows := make([][]string, 40)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("row%d", i), "1"}
	}
	table := &dataset.Table{Headers: []string{"name", "n"}, Rows: rows}

	prompt := BuildPrompt(table)
	assert.Contains(t, prompt, "row0")
	assert.Contains(t, prompt, "row14")
	assert.NotContains(t, prompt, "row15")
	assert.Contains(t, prompt, "name")
}

func TestRegistry_UnknownProvider(t *testing.T) {
	reg := NewRegistry(config.AIConfig{}, testLogger())
	_, err := reg.Get("openai")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
}

func TestRegistry_MissingCredentials(t *testing.T) {
	reg := NewRegistry(config.AIConfig{}, testLogger())
	_, err := reg.Get(ProviderYandex)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
	assert.Empty(t, reg.Providers())
}

func TestRegistry_ConfiguredProviders(t *testing.T) {
	cfg := config.AIConfig{
		Yandex:   config.YandexConfig{APIKey: "key", FolderID: "folder"},
		GigaChat: config.GigaChatConfig{AuthKey: "auth"},
	}
	reg := NewRegistry(cfg, testLogger())
	assert.Equal(t, []string{ProviderGigaChat, ProviderYandex}, reg.Providers())

	analyzer, err := reg.Get(ProviderYandex)
	require.NoError(t, err)
	assert.Equal(t, ProviderYandex, analyzer.Name())
}

func TestYandexAnalyzer_PollsUntilDone(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /completion", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Api-Key test-key", r.Header.Get("Authorization"))

		var req yandexCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt://folder/yandexgpt-lite", req.ModelURI)
		assert.InDelta(t, 0.3, req.CompletionOptions.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Text, "Moscow")

		json.NewEncoder(w).Encode(map[string]any{"id": "op-1", "done": false})
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			json.NewEncoder(w).Encode(map[string]any{"id": "op-1", "done": false})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "op-1",
			"done": true,
			"response": map[string]any{
				"alternatives": []map[string]any{
					{"message": map[string]any{"role": "assistant", "text": "Данные выглядят полными."}},
				},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.AIConfig{
		Temperature: 0.3,
		MaxTokens:   2000,
		Yandex: config.YandexConfig{
			APIKey:        "test-key",
			FolderID:      "folder",
			Model:         "yandexgpt-lite",
			Endpoint:      srv.URL + "/completion",
			OperationsURL: srv.URL + "/operations",
			PollInterval:  5 * time.Millisecond,
		},
	}

	analyzer := NewYandexAnalyzer(cfg, srv.Client(), testLogger())
	text, err := analyzer.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	assert.Equal(t, "Данные выглядят полными.", text)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestYandexAnalyzer_OperationError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /completion", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "op-2",
			"done":  true,
			"error": map[string]any{"code": 3, "message": "model overloaded"},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.AIConfig{Yandex: config.YandexConfig{
		APIKey:       "k",
		FolderID:     "f",
		Model:        "m",
		Endpoint:     srv.URL + "/completion",
		PollInterval: time.Millisecond,
	}}

	analyzer := NewYandexAnalyzer(cfg, srv.Client(), testLogger())
	_, err := analyzer.Analyze(context.Background(), testTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGigaChatAnalyzer_CachesToken(t *testing.T) {
	var tokenRequests atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)
		assert.Equal(t, "Basic auth-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("RqUID"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "GIGACHAT_API_PERS", r.PostForm.Get("scope"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_at":   time.Now().Add(time.Hour).UnixMilli(),
		})
	})
	mux.HandleFunc("POST /api/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var req gigaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GigaChat", req.Model)
		require.Len(t, req.Messages, 2)
		assert.True(t, strings.Contains(req.Messages[1].Content, "population"))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Анализ готов."}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.AIConfig{
		Temperature: 0.3,
		MaxTokens:   2000,
		GigaChat: config.GigaChatConfig{
			AuthKey:  "auth-key",
			Scope:    "GIGACHAT_API_PERS",
			OAuthURL: srv.URL + "/oauth",
			BaseURL:  srv.URL + "/api",
			Model:    "GigaChat",
		},
	}

	analyzer := NewGigaChatAnalyzer(cfg, srv.Client(), testLogger())

	text, err := analyzer.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	assert.Equal(t, "Анализ готов.", text)

	_, err = analyzer.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	assert.Equal(t, int32(1), tokenRequests.Load(), "token should be cached between calls")
}

func TestGigaChatAnalyzer_OAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := config.AIConfig{GigaChat: config.GigaChatConfig{
		AuthKey:  "bad",
		OAuthURL: srv.URL,
		BaseURL:  srv.URL,
	}}

	analyzer := NewGigaChatAnalyzer(cfg, srv.Client(), testLogger())
	_, err := analyzer.Analyze(context.Background(), testTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

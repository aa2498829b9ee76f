package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"datasight/internal/config"
	"datasight/internal/dataset"
	"datasight/internal/errors"
)

// tokenExpiryMargin renews the access token slightly before it expires.
const tokenExpiryMargin = 30 * time.Second

// GigaChatAnalyzer talks to the GigaChat API. An OAuth access token is
// obtained with the authorization key and cached until shortly before
// its expiry.
type GigaChatAnalyzer struct {
	cfg    config.AIConfig
	client *http.Client
	logger *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewGigaChatAnalyzer creates a GigaChat analyzer.
func NewGigaChatAnalyzer(cfg config.AIConfig, client *http.Client, logger *slog.Logger) *GigaChatAnalyzer {
	return &GigaChatAnalyzer{cfg: cfg, client: client, logger: logger}
}

// Name implements Analyzer.
func (a *GigaChatAnalyzer) Name() string { return ProviderGigaChat }

type gigaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gigaChatRequest struct {
	Model       string            `json:"model"`
	Messages    []gigaChatMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
}

type gigaChatResponse struct {
	Choices []struct {
		Message gigaChatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze implements Analyzer.
func (a *GigaChatAnalyzer) Analyze(ctx context.Context, table *dataset.Table) (string, error) {
	token, err := a.token(ctx)
	if err != nil {
		return "", err
	}

	req := gigaChatRequest{
		Model: a.cfg.GigaChat.Model,
		Messages: []gigaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(table)},
		},
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.GigaChat.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", errors.NewNetworkError("gigachat api request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.NewNetworkError("failed to read gigachat response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewExternalError(
			fmt.Sprintf("gigachat api returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200)), nil)
	}

	var chat gigaChatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", errors.NewExternalError("failed to decode gigachat response", err)
	}
	if len(chat.Choices) == 0 {
		return "", errors.NewExternalError("gigachat returned no choices", nil)
	}
	return chat.Choices[0].Message.Content, nil
}

// token returns a cached access token, requesting a new one when the cached
// token is missing or close to expiry.
func (a *GigaChatAnalyzer) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.expiresAt.Add(-tokenExpiryMargin)) {
		return a.accessToken, nil
	}

	form := url.Values{"scope": {a.cfg.GigaChat.Scope}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.GigaChat.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build oauth request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("RqUID", uuid.New().String())
	httpReq.Header.Set("Authorization", "Basic "+a.cfg.GigaChat.AuthKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", errors.NewNetworkError("gigachat oauth request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.NewNetworkError("failed to read gigachat oauth response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewExternalError(
			fmt.Sprintf("gigachat oauth returned status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"` // unix milliseconds
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", errors.NewExternalError("failed to decode gigachat oauth response", err)
	}
	if token.AccessToken == "" {
		return "", errors.NewExternalError("gigachat oauth returned an empty token", nil)
	}

	a.accessToken = token.AccessToken
	a.expiresAt = time.UnixMilli(token.ExpiresAt)

	a.logger.InfoContext(ctx, "gigachat access token refreshed",
		slog.Time("expires_at", a.expiresAt))
	return a.accessToken, nil
}

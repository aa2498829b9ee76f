package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"datasight/internal/config"
	"datasight/internal/dataset"
	"datasight/internal/errors"
)

// YandexAnalyzer talks to the YandexGPT foundation models API. Completion
// requests are asynchronous: the first call returns an operation id which is
// polled until the model finishes.
type YandexAnalyzer struct {
	cfg    config.AIConfig
	client *http.Client
	logger *slog.Logger
}

// NewYandexAnalyzer creates a YandexGPT analyzer.
func NewYandexAnalyzer(cfg config.AIConfig, client *http.Client, logger *slog.Logger) *YandexAnalyzer {
	return &YandexAnalyzer{cfg: cfg, client: client, logger: logger}
}

// Name implements Analyzer.
func (a *YandexAnalyzer) Name() string { return ProviderYandex }

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexCompletionRequest struct {
	ModelURI          string `json:"modelUri"`
	CompletionOptions struct {
		Stream      bool    `json:"stream"`
		Temperature float64 `json:"temperature"`
		MaxTokens   string  `json:"maxTokens"`
	} `json:"completionOptions"`
	Messages []yandexMessage `json:"messages"`
}

type yandexOperation struct {
	ID       string `json:"id"`
	Done     bool   `json:"done"`
	Response struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
		} `json:"alternatives"`
	} `json:"response"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze implements Analyzer.
func (a *YandexAnalyzer) Analyze(ctx context.Context, table *dataset.Table) (string, error) {
	req := yandexCompletionRequest{
		ModelURI: fmt.Sprintf("gpt://%s/%s", a.cfg.Yandex.FolderID, a.cfg.Yandex.Model),
		Messages: []yandexMessage{
			{Role: "system", Text: systemPrompt},
			{Role: "user", Text: BuildPrompt(table)},
		},
	}
	req.CompletionOptions.Temperature = a.cfg.Temperature
	req.CompletionOptions.MaxTokens = strconv.Itoa(a.cfg.MaxTokens)

	op, err := a.startCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	a.logger.InfoContext(ctx, "yandex completion started", slog.String("operation_id", op.ID))

	op, err = a.pollOperation(ctx, op)
	if err != nil {
		return "", err
	}

	if op.Error.Message != "" {
		return "", errors.NewExternalError(fmt.Sprintf("yandex completion failed: %s", op.Error.Message), nil)
	}
	if len(op.Response.Alternatives) == 0 {
		return "", errors.NewExternalError("yandex completion returned no alternatives", nil)
	}
	return op.Response.Alternatives[0].Message.Text, nil
}

func (a *YandexAnalyzer) startCompletion(ctx context.Context, req yandexCompletionRequest) (*yandexOperation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Yandex.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+a.cfg.Yandex.APIKey)
	httpReq.Header.Set("x-folder-id", a.cfg.Yandex.FolderID)

	return a.doOperationRequest(httpReq)
}

func (a *YandexAnalyzer) pollOperation(ctx context.Context, op *yandexOperation) (*yandexOperation, error) {
	ticker := time.NewTicker(a.cfg.Yandex.PollInterval)
	defer ticker.Stop()

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, errors.NewExternalError("yandex completion timed out", ctx.Err())
		case <-ticker.C:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/%s", a.cfg.Yandex.OperationsURL, op.ID), nil)
		if err != nil {
			return nil, fmt.Errorf("build operation request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Api-Key "+a.cfg.Yandex.APIKey)

		op, err = a.doOperationRequest(httpReq)
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (a *YandexAnalyzer) doOperationRequest(req *http.Request) (*yandexOperation, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("yandex api request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.NewNetworkError("failed to read yandex response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalError(
			fmt.Sprintf("yandex api returned status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var op yandexOperation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, errors.NewExternalError("failed to decode yandex response", err)
	}
	return &op, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

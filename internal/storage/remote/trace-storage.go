package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrTraceRejected = errors.New("trace run rejected")
)

type runMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runRequest struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	RunType     string         `json:"run_type"`
	SessionName string         `json:"session_name"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
	Extra       map[string]any `json:"extra"`
}

// TraceStorage posts runs to a LangSmith compatible tracing endpoint.
type TraceStorage struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewTraceStorage(endpoint, apiKey string, httpClient *http.Client) *TraceStorage {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TraceStorage{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (t *TraceStorage) SaveRun(ctx context.Context, run model.TraceRun) error {
	runsURL, err := url.JoinPath(t.endpoint, "/runs")
	if err != nil {
		return fmt.Errorf("failed to build runs url from %s: %w", t.endpoint, err)
	}
	body, err := json.Marshal(toRunRequest(run))
	if err != nil {
		return fmt.Errorf("failed to marshal trace run: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, runsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create trace request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send trace run %s: %w", run.RunID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrTraceRejected, resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return nil
}

func toRunRequest(run model.TraceRun) runRequest {
	messages := make([]runMessage, 0, len(run.Prompt))
	for _, msg := range run.Prompt {
		messages = append(messages, runMessage{Role: msg.Role, Content: msg.Content})
	}
	req := runRequest{
		ID:          run.RunID.String(),
		Name:        "cricket-guru-turn",
		RunType:     "llm",
		SessionName: run.Project,
		StartTime:   run.StartedAt.UTC(),
		EndTime:     run.FinishedAt.UTC(),
		Inputs:      map[string]any{"messages": messages},
		Extra: map[string]any{
			"metadata": map[string]any{
				"session_id":    run.SessionID.String(),
				"model":         run.Model,
				"prompt_tokens": run.PromptTokens,
			},
		},
	}
	if run.Succeeded() {
		req.Outputs = map[string]any{"output": run.Output}
	} else {
		req.Error = run.Error
	}
	return req
}

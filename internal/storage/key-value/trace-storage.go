package key_value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/redis/go-redis/v9"
	"time"
)

var (
	ErrTraceRunDoesNotExist = errors.New("trace run does not exist")
)

type promptMessageInternal struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type traceRunInternal struct {
	RunID        string                  `json:"run_id"`
	SessionID    string                  `json:"session_id"`
	Project      string                  `json:"project"`
	Model        string                  `json:"model"`
	Prompt       []promptMessageInternal `json:"prompt"`
	Output       string                  `json:"output"`
	ErrorKind    string                  `json:"error_kind,omitempty"`
	Error        string                  `json:"error,omitempty"`
	PromptTokens int                     `json:"prompt_tokens"`
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
}

type TraceStorage struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewTraceStorage keeps runs for retention; zero keeps them until evicted by redis.
func NewTraceStorage(rdb *redis.Client, retention time.Duration) *TraceStorage {
	return &TraceStorage{
		rdb:       rdb,
		retention: retention,
	}
}

func (t *TraceStorage) SaveRun(ctx context.Context, run model.TraceRun) error {
	runInt := toTraceRunInternal(run)
	if err := t.setRunInt(ctx, run.RunID, runInt); err != nil {
		return fmt.Errorf("failed to set trace run %s: %w", run.RunID.String(), err)
	}
	projectKey := getProjectRunsKey(run.Project)
	if err := t.rdb.RPush(ctx, projectKey, run.RunID.String()).Err(); err != nil {
		return fmt.Errorf("failed to index trace run %s in %s: %w", run.RunID.String(), projectKey, err)
	}
	return nil
}

func (t *TraceStorage) GetRun(ctx context.Context, runID uuid.UUID) (model.TraceRun, error) {
	runInt, err := t.getRunInt(ctx, runID)
	if err != nil {
		return model.TraceRun{}, err
	}
	run, err := fromTraceRunInternal(runInt)
	if err != nil {
		return model.TraceRun{}, fmt.Errorf("failed to parse trace run %s: %w", runID, err)
	}
	return run, nil
}

// ListProjectRuns returns the project's runs oldest first. Runs whose blob has
// expired are skipped.
func (t *TraceStorage) ListProjectRuns(ctx context.Context, project string) ([]model.TraceRun, error) {
	runIDs, err := t.rdb.LRange(ctx, getProjectRunsKey(project), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s runs: %w", project, err)
	}
	runs := make([]model.TraceRun, 0, len(runIDs))
	for _, runIDStr := range runIDs {
		runID, err := uuid.Parse(runIDStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse runID %s: %w", runIDStr, err)
		}
		run, err := t.GetRun(ctx, runID)
		if err != nil {
			if errors.Is(err, ErrTraceRunDoesNotExist) {
				continue
			}
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (t *TraceStorage) getRunInt(ctx context.Context, runID uuid.UUID) (traceRunInternal, error) {
	runKey := getTraceRunKey(runID)
	runRaw, err := t.rdb.Get(ctx, runKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return traceRunInternal{}, ErrTraceRunDoesNotExist
		}
		return traceRunInternal{}, fmt.Errorf("failed to get trace run %s: %w", runID, err)
	}
	var runInt traceRunInternal
	if err = json.Unmarshal([]byte(runRaw), &runInt); err != nil {
		return traceRunInternal{}, fmt.Errorf("failed to unmarshal trace run %s: %w", runID, err)
	}
	return runInt, nil
}

func (t *TraceStorage) setRunInt(ctx context.Context, runID uuid.UUID, runInt traceRunInternal) error {
	runJSON, err := json.Marshal(runInt)
	if err != nil {
		return fmt.Errorf("failed to marshal internal trace run: %w", err)
	}
	runKey := getTraceRunKey(runID)
	if err = t.rdb.Set(ctx, runKey, runJSON, t.retention).Err(); err != nil {
		return fmt.Errorf("failed to save trace run %s: %w", runKey, err)
	}
	return nil
}

func toTraceRunInternal(run model.TraceRun) traceRunInternal {
	prompt := make([]promptMessageInternal, 0, len(run.Prompt))
	for _, msg := range run.Prompt {
		prompt = append(prompt, promptMessageInternal{Role: msg.Role, Content: msg.Content})
	}
	return traceRunInternal{
		RunID:        run.RunID.String(),
		SessionID:    run.SessionID.String(),
		Project:      run.Project,
		Model:        run.Model,
		Prompt:       prompt,
		Output:       run.Output,
		ErrorKind:    string(run.ErrorKind),
		Error:        run.Error,
		PromptTokens: run.PromptTokens,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func fromTraceRunInternal(runInt traceRunInternal) (model.TraceRun, error) {
	runID, err := uuid.Parse(runInt.RunID)
	if err != nil {
		return model.TraceRun{}, fmt.Errorf("failed to parse runID %s: %w", runInt.RunID, err)
	}
	sessionID, err := uuid.Parse(runInt.SessionID)
	if err != nil {
		return model.TraceRun{}, fmt.Errorf("failed to parse sessionID %s: %w", runInt.SessionID, err)
	}
	prompt := make([]model.TracePromptMessage, 0, len(runInt.Prompt))
	for _, msg := range runInt.Prompt {
		prompt = append(prompt, model.TracePromptMessage{Role: msg.Role, Content: msg.Content})
	}
	return model.TraceRun{
		RunID:        runID,
		SessionID:    sessionID,
		Project:      runInt.Project,
		Model:        runInt.Model,
		Prompt:       prompt,
		Output:       runInt.Output,
		ErrorKind:    model.ErrorKind(runInt.ErrorKind),
		Error:        runInt.Error,
		PromptTokens: runInt.PromptTokens,
		StartedAt:    runInt.StartedAt,
		FinishedAt:   runInt.FinishedAt,
	}, nil
}

func getTraceRunKey(runID uuid.UUID) string {
	return fmt.Sprintf("trace_run_%v", runID.String())
}

func getProjectRunsKey(project string) string {
	return fmt.Sprintf("trace_project_runs_%v", project)
}

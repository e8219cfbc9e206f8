package remote

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRun() model.TraceRun {
	started := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return model.TraceRun{
		RunID:     uuid.New(),
		SessionID: uuid.New(),
		Project:   "cricket-bot",
		Model:     "gpt-3.5-turbo",
		Prompt: []model.TracePromptMessage{
			{Role: "system", Content: "You are a cricket expert."},
			{Role: "user", Content: "Who won the 2019 Cricket World Cup?"},
		},
		Output:       "England.",
		PromptTokens: 30,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Second),
	}
}

func TestTraceStorageSaveRunPostsRun(t *testing.T) {
	var (
		gotPath   string
		gotAPIKey string
		gotBody   runRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("x-api-key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	run := testRun()
	storage := NewTraceStorage(srv.URL, "ls-key", srv.Client())
	require.NoError(t, storage.SaveRun(context.Background(), run))

	assert.Equal(t, "/runs", gotPath)
	assert.Equal(t, "ls-key", gotAPIKey)
	assert.Equal(t, run.RunID.String(), gotBody.ID)
	assert.Equal(t, "llm", gotBody.RunType)
	assert.Equal(t, "cricket-bot", gotBody.SessionName)
	assert.Equal(t, "England.", gotBody.Outputs["output"])
	assert.Empty(t, gotBody.Error)
	assert.True(t, run.StartedAt.Equal(gotBody.StartTime))
}

func TestTraceStorageSaveFailedRun(t *testing.T) {
	var gotBody runRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	defer srv.Close()

	run := testRun()
	run.Output = ""
	run.ErrorKind = model.ErrorKindTransportFailure
	run.Error = "TransportFailure: connection refused"

	require.NoError(t, NewTraceStorage(srv.URL, "ls-key", nil).SaveRun(context.Background(), run))
	assert.Equal(t, "TransportFailure: connection refused", gotBody.Error)
	assert.Nil(t, gotBody.Outputs)
}

func TestTraceStorageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewTraceStorage(srv.URL, "bad", srv.Client()).SaveRun(context.Background(), testRun())
	require.ErrorIs(t, err, ErrTraceRejected)
	assert.Contains(t, err.Error(), "invalid api key")
}

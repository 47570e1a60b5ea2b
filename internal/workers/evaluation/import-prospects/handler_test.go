// internal/workers/evaluation/import-prospects/handler_test.go
package importprospects

import (
	"context"
	"testing"
	"time"

	"candidate-evaluation-workers/internal/common/config"
	"candidate-evaluation-workers/internal/common/database"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/engine/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prospectsCSV = `Name,Source,Wealth (M),Best NNM (M),Worst NNM (M)
Alpha,Finder,40,20,10
Beta,inherited,25,12,5
"Gamma, Jr.",Unknown,60,20,8
`

func newTestHandler(t *testing.T) (*Handler, *database.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := database.NewSessionStore(client, time.Hour)
	return NewHandler(LoadConfig(config.WorkerConfig{}), store, logger.NewTestLogger(t)), store
}

func seedSession(t *testing.T, store *database.SessionStore, id string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), session.New(id, time.Now())))
}

func TestHandler_Execute_Imports(t *testing.T) {
	handler, store := newTestHandler(t)
	seedSession(t, store, "s-1")

	output, err := handler.Execute(context.Background(), &Input{SessionID: "s-1", CSV: prospectsCSV})
	require.NoError(t, err)

	assert.Equal(t, 3, output.Imported)
	assert.Equal(t, 3, output.ProspectCount)
	assert.Equal(t, 125.0, output.Totals.WealthM)
	assert.Equal(t, 52.0, output.Totals.BestCaseNNMM)
	assert.Equal(t, 23.0, output.Totals.WorstCaseNNMM)

	saved, err := store.Load(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, saved.Prospects, 3)
	assert.Equal(t, "Gamma, Jr.", saved.Prospects[2].Name)
	assert.Equal(t, "Self Acquired", saved.Prospects[2].Source)
	assert.Equal(t, "Inherited", saved.Prospects[1].Source)
}

func TestHandler_Execute_Appends(t *testing.T) {
	handler, store := newTestHandler(t)
	seedSession(t, store, "s-2")
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{SessionID: "s-2", CSV: prospectsCSV})
	require.NoError(t, err)
	output, err := handler.Execute(ctx, &Input{SessionID: "s-2", CSV: prospectsCSV})
	require.NoError(t, err)

	assert.Equal(t, 3, output.Imported)
	assert.Equal(t, 6, output.ProspectCount)
	assert.Equal(t, 104.0, output.Totals.BestCaseNNMM)
}

func TestHandler_Execute_WrongHeader(t *testing.T) {
	handler, store := newTestHandler(t)
	seedSession(t, store, "s-3")

	output, err := handler.Execute(context.Background(), &Input{
		SessionID: "s-3",
		CSV:       "Client,Assets\nAlpha,40\n",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, output.Imported)
	assert.Equal(t, 0, output.ProspectCount)
}

func TestHandler_Execute_SessionNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{SessionID: "missing", CSV: prospectsCSV})
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

// internal/workers/evaluation/save-evaluation/handler_test.go
package saveevaluation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"candidate-evaluation-workers/internal/common/config"
	"candidate-evaluation-workers/internal/common/database"
	apperrors "candidate-evaluation-workers/internal/common/errors"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/sheets"
	"candidate-evaluation-workers/internal/engine/session"
	"candidate-evaluation-workers/internal/export"
	"candidate-evaluation-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 123456789, time.UTC)

type testEnv struct {
	handler *Handler
	store   *database.SessionStore
	mock    sqlmock.Sqlmock
	calls   *int32
	bodies  chan map[string]interface{}
}

func newTestEnv(t *testing.T, sheetsHandler http.HandlerFunc) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := database.NewSessionStore(client, time.Hour)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var calls int32
	bodies := make(chan map[string]interface{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if json.Unmarshal(raw, &body) == nil {
			select {
			case bodies <- body:
			default:
			}
		}
		sheetsHandler(w, r)
	}))
	t.Cleanup(srv.Close)

	sheetsClient := sheets.NewClient(config.PersistenceConfig{
		BaseURL:  srv.URL,
		SavePath: "/save",
		Timeout:  2000,
	})

	handler := NewHandler(
		LoadConfig(config.WorkerConfig{}),
		store,
		export.NewSubmitter(sheetsClient),
		database.NewEvaluationRepository(db),
		logger.NewTestLogger(t),
	)
	handler.now = func() time.Time { return fixedNow }

	return &testEnv{handler: handler, store: store, mock: mock, calls: &calls, bodies: bodies}
}

func acknowledge(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(`{"success":true,"message":"row appended"}`))
}

func portabilitySession(id string, scored bool) session.State {
	st := session.ApplyAll(session.New(id, fixedNow),
		session.UpdateProfile{Profile: models.CandidateProfile{
			Name:             "Marc Weber",
			Email:            "marc@example.com",
			CurrentRole:      "Senior RM",
			CurrentMarket:    models.MarketCHOnshore,
			InheritedBookPct: 20,
		}},
		session.UpdateBook{Book: models.BookComposition{CurrentAssetsM: 300, CurrentNumberClients: 50, Top3ConcentrationPct: 25}},
		session.UpdateGeography{Geography: models.GeographyProductMix{BookingCentres: []string{"Geneva", "London", "Singapore"}, CrossBorderLicenses: 3}},
		session.UpdateRelationships{Relationships: models.RelationshipMetrics{
			AvgRelationshipYears: 12, ClientsKnownPersonallyPct: 85, MultiGenerationalPct: 45,
			ClientReferralRatePct: 22, KYCPortability: 3,
		}},
	)
	if scored {
		st = session.WithResult(st, session.Recompute(st), models.ToolPortability)
	}
	return st
}

func (e *testEnv) seed(t *testing.T, st session.State) {
	t.Helper()
	require.NoError(t, e.store.Save(context.Background(), st))
}

func (e *testEnv) expectInsert(role string) {
	e.mock.ExpectExec(`INSERT INTO candidate_evaluations`).
		WithArgs(
			sqlmock.AnyArg(), "s-1", models.ToolPortability, sqlmock.AnyArg(),
			"Marc Weber", "marc@example.com", role, models.MarketCHOnshore,
			92, models.VerdictGreen, sqlmock.AnyArg(), sqlmock.AnyArg(),
			"https://cv.example.com/marc", "", models.ShortlistNo,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	e.mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.StandardError {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
	return stdErr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	env := newTestEnv(t, acknowledge)
	env.seed(t, portabilitySession("s-1", true))
	env.expectInsert("Senior RM")

	output, err := env.handler.Execute(context.Background(), &Input{
		SessionID: "s-1",
		Tool:      models.ToolPortability,
		CVLink:    "https://cv.example.com/marc",
		Tags:      []string{"geneva", "uhnw"},
	})
	require.NoError(t, err)

	assert.True(t, output.Saved)
	assert.Len(t, output.EvaluationID, 36)
	assert.Equal(t, "2026-06-01T10:00:00Z", output.Timestamp)
	assert.Equal(t, 92, output.Score)
	assert.Equal(t, models.VerdictGreen, output.Verdict)
	assert.Equal(t, "Marc Weber", output.CandidateName)
	assert.Equal(t, "row appended", output.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(env.calls))
	assert.NoError(t, env.mock.ExpectationsWereMet())

	body := <-env.bodies
	assert.Equal(t, "s-1", body["session_id"])
	assert.Equal(t, "Marc Weber", body["candidate_name"])
	assert.Equal(t, float64(92), body["score"])
	assert.Equal(t, "2026-06-01T10:00:00Z", body["timestamp"])
}

func TestHandler_Execute_RoleOverride(t *testing.T) {
	env := newTestEnv(t, acknowledge)
	env.seed(t, portabilitySession("s-1", true))
	env.expectInsert("Team Head")

	_, err := env.handler.Execute(context.Background(), &Input{
		SessionID: "s-1",
		Tool:      models.ToolPortability,
		Role:      "Team Head",
		CVLink:    "https://cv.example.com/marc",
	})
	require.NoError(t, err)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_Execute_ScoresUnscoredSession(t *testing.T) {
	env := newTestEnv(t, acknowledge)
	env.seed(t, portabilitySession("s-1", false))
	env.expectInsert("Senior RM")

	output, err := env.handler.Execute(context.Background(), &Input{
		SessionID: "s-1",
		Tool:      models.ToolPortability,
		CVLink:    "https://cv.example.com/marc",
	})
	require.NoError(t, err)
	assert.Equal(t, 92, output.Score)

	saved, err := env.store.Load(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, saved.Result)
	assert.NotNil(t, saved.Result.Portability)
}

// ==========================
// Error Scenario Tests
// ==========================

func TestHandler_Execute_NotAcknowledged(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"sheet locked"}`))
	})
	env.seed(t, portabilitySession("s-1", true))

	_, err := env.handler.Execute(context.Background(), &Input{SessionID: "s-1", Tool: models.ToolPortability})

	stdErr := requireCode(t, err, apperrors.ErrCodePersistenceRejected)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "sheet locked")
	assert.Equal(t, "PERSISTENCE_FAILED", apperrors.ConvertToBPMNError(stdErr).Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_Execute_RemoteError(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	env.seed(t, portabilitySession("s-1", true))

	_, err := env.handler.Execute(context.Background(), &Input{SessionID: "s-1", Tool: models.ToolPortability})

	stdErr := requireCode(t, err, apperrors.ErrCodePersistenceFailed)
	assert.Equal(t, 0, apperrors.ConvertToBPMNError(stdErr).Retries)
	assert.Equal(t, int32(1), atomic.LoadInt32(env.calls))
}

func TestHandler_Execute_RecordFailsAfterSave(t *testing.T) {
	env := newTestEnv(t, acknowledge)
	env.seed(t, portabilitySession("s-1", true))
	env.mock.ExpectExec(`INSERT INTO candidate_evaluations`).
		WillReturnError(errors.New("connection reset"))

	_, err := env.handler.Execute(context.Background(), &Input{SessionID: "s-1", Tool: models.ToolPortability})

	stdErr := requireCode(t, err, apperrors.ErrCodeEvaluationRecordFailed)
	assert.False(t, stdErr.Retryable)
	assert.True(t, errors.Is(err, database.ErrEvaluationStore))
	assert.Equal(t, int32(1), atomic.LoadInt32(env.calls))
}

func TestHandler_Execute_InvalidEmail(t *testing.T) {
	env := newTestEnv(t, acknowledge)
	st := portabilitySession("s-1", true)
	st.Input.Profile.Email = "marc at example"
	env.seed(t, st)

	_, err := env.handler.Execute(context.Background(), &Input{SessionID: "s-1", Tool: models.ToolPortability})

	requireCode(t, err, apperrors.ErrCodeInputValidationFailed)
	assert.Equal(t, int32(0), atomic.LoadInt32(env.calls))
}

func TestHandler_Execute_SessionNotFound(t *testing.T) {
	env := newTestEnv(t, acknowledge)

	_, err := env.handler.Execute(context.Background(), &Input{SessionID: "nope", Tool: models.ToolBusinessPlan})

	requireCode(t, err, apperrors.ErrCodeSessionNotFound)
	assert.Equal(t, int32(0), atomic.LoadInt32(env.calls))
}

func TestHandler_Execute_SingleInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		acknowledge(w, r)
	})
	env.seed(t, portabilitySession("s-1", true))
	env.expectInsert("Senior RM")

	input := &Input{SessionID: "s-1", Tool: models.ToolPortability, CVLink: "https://cv.example.com/marc"}
	done := make(chan error, 1)
	go func() {
		_, err := env.handler.Execute(context.Background(), input)
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never reached the endpoint")
	}

	_, err := env.handler.Execute(context.Background(), input)
	requireCode(t, err, apperrors.ErrCodeSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(env.calls))
}

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awsclient "candidate-evaluation-workers/internal/common/aws"
	"candidate-evaluation-workers/internal/common/config"
	"candidate-evaluation-workers/internal/common/database"
	"candidate-evaluation-workers/internal/common/logger"
	"candidate-evaluation-workers/internal/common/sheets"
	"candidate-evaluation-workers/internal/dashboard"
	"candidate-evaluation-workers/internal/export"
	"candidate-evaluation-workers/internal/models"

	applyprefill "candidate-evaluation-workers/internal/workers/evaluation/apply-prefill"
	exportcandidateledger "candidate-evaluation-workers/internal/workers/evaluation/export-candidate-ledger"
	importprospects "candidate-evaluation-workers/internal/workers/evaluation/import-prospects"
	notifyrecruiter "candidate-evaluation-workers/internal/workers/evaluation/notify-recruiter"
	saveevaluation "candidate-evaluation-workers/internal/workers/evaluation/save-evaluation"
	simulatebusinessplan "candidate-evaluation-workers/internal/workers/evaluation/simulate-business-plan"
	toggleshortlist "candidate-evaluation-workers/internal/workers/evaluation/toggle-shortlist"
)

const prospectsCSV = `Name,Source,Wealth (M),Best NNM (M),Worst NNM (M)
Alpha,Finder,40,20,10
Beta,inherited,25,12,5
"Gamma, Jr.",,60,20,8
`

var ledgerColumns = []string{
	"id", "session_id", "tool", "evaluated_at", "name", "email", "role", "market",
	"match_score", "verdict", "ai_summary", "tags", "cv_link", "linkedin_search", "shortlist",
}

type fakeSES struct {
	mu    sync.Mutex
	calls []*ses.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	return &ses.SendEmailOutput{MessageId: aws.String("ses-e2e")}, nil
}

// sheetsStub records the paths and bodies posted to the spreadsheet endpoint.
type sheetsStub struct {
	mu     sync.Mutex
	paths  []string
	bodies []map[string]interface{}
}

func (s *sheetsStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)

	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()

	if r.URL.Path == "/save" {
		_, _ = w.Write([]byte(`{"success":true,"message":"row appended"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
}

type pipeline struct {
	prefill  *applyprefill.Handler
	importer *importprospects.Handler
	simulate *simulatebusinessplan.Handler
	save     *saveevaluation.Handler
	notify   *notifyrecruiter.Handler
	toggle   *toggleshortlist.Handler
	ledger   *exportcandidateledger.Handler
	mock     sqlmock.Sqlmock
	sheets   *sheetsStub
	ses      *fakeSES
	mr       *miniredis.Miniredis
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	log := logger.NewTestLogger(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	sessions := database.NewSessionStore(rdb, 2*time.Hour)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := database.NewEvaluationRepository(db)

	stub := &sheetsStub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	sheetsClient := sheets.NewClient(config.PersistenceConfig{
		BaseURL:       srv.URL,
		SavePath:      "/save",
		ShortlistPath: "/shortlist",
		Timeout:       2000,
	})

	ncfg := config.NotificationConfig{
		Enabled:    true,
		FromEmail:  "talent@example.com",
		Recruiters: []string{"lead@example.com"},
		NotifyOn:   []string{models.VerdictStrongCandidate, models.VerdictGreen},
	}
	api := &fakeSES{}
	mailer := awsclient.NewSESClientWithAPI(api, ncfg.FromEmail)

	wcfg := config.WorkerConfig{}
	return &pipeline{
		prefill:  applyprefill.NewHandler(applyprefill.LoadConfig(wcfg), sessions, log),
		importer: importprospects.NewHandler(importprospects.LoadConfig(wcfg), sessions, log),
		simulate: simulatebusinessplan.NewHandler(
			simulatebusinessplan.LoadConfig(wcfg, config.ScoringConfig{PipelineTolerancePct: 10}),
			sessions, nil, log,
		),
		save: saveevaluation.NewHandler(
			saveevaluation.LoadConfig(wcfg), sessions,
			export.NewSubmitter(sheetsClient), repo, log,
		),
		notify: notifyrecruiter.NewHandler(notifyrecruiter.LoadConfig(wcfg, ncfg), mailer, log),
		toggle: toggleshortlist.NewHandler(toggleshortlist.LoadConfig(wcfg), dashboard.NewToggler(repo, sheetsClient), repo, log),
		ledger: exportcandidateledger.NewHandler(exportcandidateledger.LoadConfig(wcfg), repo, log),
		mock:   mock,
		sheets: stub,
		ses:    api,
		mr:     mr,
	}
}

// TestBusinessPlanPipeline drives one candidate from the recruiter prefill
// through scoring, persistence, notification and the dashboard.
func TestBusinessPlanPipeline(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	const sessionID = "e2e-session"

	// 1. Prefill from the recruiter payload.
	prefilled, err := p.prefill.Execute(ctx, &applyprefill.Input{
		SessionID: sessionID,
		Payload: map[string]interface{}{
			"candidate_name": "Anna Keller",
			"email":          "anna.keller@bank.ch",
			"aum":            260000000.0,
		},
	})
	require.NoError(t, err)
	assert.True(t, prefilled.PrefillApplied)
	assert.True(t, p.mr.Exists("session:"+sessionID))

	// 2. Import the prospect ledger.
	imported, err := p.importer.Execute(ctx, &importprospects.Input{SessionID: sessionID, CSV: prospectsCSV})
	require.NoError(t, err)
	assert.Equal(t, 3, imported.Imported)
	assert.Equal(t, 52.0, imported.Totals.BestCaseNNMM)

	// 3. Score the business plan. The profile keeps the prefilled identity.
	scored, err := p.simulate.Execute(ctx, &simulatebusinessplan.Input{
		SessionID: sessionID,
		Profile: &models.CandidateProfile{
			Name:            "Anna Keller",
			Email:           "anna.keller@bank.ch",
			YearsExperience: 8,
			CurrentMarket:   models.MarketCHOnshore,
			BaseSalary:      250000,
			LastBonus:       150000,
		},
		Book: &models.BookComposition{CurrentAssetsM: 260, CurrentNumberClients: 40, Top3ConcentrationPct: 25},
		Projection: &models.NNMProjection{
			NNMYear1: 50, NNMYear2: 45, NNMYear3: 45,
			ROAPctYear1: 0.95, ROAPctYear2: 0.95, ROAPctYear3: 0.95,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 12, scored.Score)
	assert.Equal(t, models.VerdictStrongCandidate, scored.Verdict)

	// 4. Save the evaluation remotely and in the ledger.
	p.mock.ExpectExec(`INSERT INTO candidate_evaluations`).
		WithArgs(
			sqlmock.AnyArg(), sessionID, models.ToolBusinessPlan, sqlmock.AnyArg(),
			"Anna Keller", "anna.keller@bank.ch", "Private Banker", models.MarketCHOnshore,
			12, models.VerdictStrongCandidate, sqlmock.AnyArg(), sqlmock.AnyArg(),
			"", "", models.ShortlistNo,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	p.mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

	saved, err := p.save.Execute(ctx, &saveevaluation.Input{
		SessionID: sessionID,
		Tool:      models.ToolBusinessPlan,
		Role:      "Private Banker",
	})
	require.NoError(t, err)
	assert.True(t, saved.Saved)
	assert.NotEmpty(t, saved.EvaluationID)
	assert.Equal(t, 12, saved.Score)

	ts, err := time.Parse(time.RFC3339, saved.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, ts.Truncate(time.Second), ts)

	// 5. Notify recruiters about the strong candidate.
	notified, err := p.notify.Execute(ctx, &notifyrecruiter.Input{
		EvaluationID:   saved.EvaluationID,
		CandidateName:  saved.CandidateName,
		CandidateEmail: saved.CandidateEmail,
		Tool:           saved.Tool,
		Score:          saved.Score,
		Verdict:        saved.Verdict,
	})
	require.NoError(t, err)
	assert.True(t, notified.Notified)
	require.Len(t, p.ses.calls, 1)
	assert.Equal(t, "Strong Candidate: Anna Keller (business plan 12/12)", aws.ToString(p.ses.calls[0].Message.Subject.Data))

	// 6. Shortlist the saved row from the dashboard.
	p.mock.ExpectQuery(`SELECT shortlist FROM candidate_evaluations`).
		WithArgs("anna.keller@bank.ch", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"shortlist"}).AddRow(models.ShortlistNo))
	p.mock.ExpectExec(`UPDATE candidate_evaluations SET shortlist`).
		WithArgs(models.ShortlistYes, "anna.keller@bank.ch", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	p.mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

	toggled, err := p.toggle.Execute(ctx, &toggleshortlist.Input{Email: "anna.keller@bank.ch", Timestamp: saved.Timestamp})
	require.NoError(t, err)
	assert.Equal(t, models.ShortlistYes, toggled.Shortlist)

	// 7. Export the shortlisted candidates.
	p.mock.ExpectQuery(`FROM candidate_evaluations WHERE shortlist = \$1`).
		WithArgs(models.ShortlistYes, exportcandidateledger.DefaultLimit).
		WillReturnRows(sqlmock.NewRows(ledgerColumns).AddRow(
			saved.EvaluationID, sessionID, models.ToolBusinessPlan, ts,
			"Anna Keller", "anna.keller@bank.ch", "Private Banker", models.MarketCHOnshore,
			12, models.VerdictStrongCandidate, "Business Plan Score: 12", "{}", "", "", models.ShortlistYes,
		))

	exported, err := p.ledger.Execute(ctx, &exportcandidateledger.Input{ShortlistOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, exported.Rows)
	lines := strings.Split(strings.TrimSpace(exported.CSV), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], saved.Timestamp+",Anna Keller,anna.keller@bank.ch,Private Banker,"))
	assert.True(t, strings.HasSuffix(lines[1], ",YES"))

	assert.NoError(t, p.mock.ExpectationsWereMet())

	// The spreadsheet saw one save and one shortlist update.
	require.Equal(t, []string{"/save", "/shortlist"}, p.sheets.paths)
	assert.Equal(t, "YES", p.sheets.bodies[1]["value"])
}

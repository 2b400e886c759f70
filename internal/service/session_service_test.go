package service

import (
	"context"
	"testing"
	"time"

	"github.com/docquiz/docquiz-backend/internal/config"
	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// stubSink records enqueued results in memory.
type stubSink struct {
	results []*model.ExamResult
}

func (s *stubSink) Enqueue(_ context.Context, result *model.ExamResult) error {
	s.results = append(s.results, result)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		SessionTokenTTL:     time.Hour,
		ExamDurationSeconds: 5400,
	}
}

func testSet(t *testing.T) *exam.QuestionSet {
	t.Helper()
	set, err := exam.NewQuestionSet([]exam.Question{
		{ID: 1, Text: "Pick B", Options: []string{"A", "B", "C"}, CorrectOption: 2},
		{ID: 2, Text: "Pick A", Options: []string{"A", "B"}, CorrectOption: 1},
	})
	if err != nil {
		t.Fatalf("NewQuestionSet: %v", err)
	}
	return set
}

func newTestService(t *testing.T) (*SessionService, *stubSink) {
	t.Helper()
	sink := &stubSink{}
	return NewSessionService(testConfig(), sink, zerolog.Nop()), sink
}

func TestCreateIssuesValidToken(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(testSet(t), "test paper", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.TimeLimitSeconds != 5400 {
		t.Errorf("TimeLimitSeconds = %d, want config default 5400", created.TimeLimitSeconds)
	}
	if created.Total != 2 {
		t.Errorf("Total = %d, want 2", created.Total)
	}

	parsed, err := svc.ParseSessionToken(created.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if parsed != created.SessionID {
		t.Errorf("token session id = %s, want %s", parsed, created.SessionID)
	}
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ParseSessionToken("not.a.token"); err == nil {
		t.Fatal("expected error for garbage token")
	}

	// Token signed with a different secret must be rejected.
	other := NewSessionService(&config.Config{
		JWTSecret:           "other-secret",
		SessionTokenTTL:     time.Hour,
		ExamDurationSeconds: 60,
	}, &stubSink{}, zerolog.Nop())
	token, err := other.GenerateSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if _, err := svc.ParseSessionToken(token); err == nil {
		t.Fatal("expected error for token signed with wrong secret")
	}
}

func TestGetUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Get(uuid.New()); err != ErrSessionNotFound {
		t.Fatalf("Get unknown = %v, want ErrSessionNotFound", err)
	}
}

func TestSubmitDispatchesResult(t *testing.T) {
	svc, sink := newTestService(t)

	created, err := svc.Create(testSet(t), "test paper", 300)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	session, err := svc.Get(created.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := session.SelectAnswer(2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	report, err := svc.Submit(context.Background(), created.SessionID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Correct != 1 || report.Unattempted != 1 {
		t.Errorf("report = %+v, want correct=1 unattempted=1", report)
	}

	if len(sink.results) != 1 {
		t.Fatalf("sink got %d results, want 1", len(sink.results))
	}
	res := sink.results[0]
	if res.SessionID != created.SessionID {
		t.Errorf("result session id = %s, want %s", res.SessionID, created.SessionID)
	}
	if res.Source != "test paper" {
		t.Errorf("result source = %q", res.Source)
	}
	if res.Answers[1] != 2 {
		t.Errorf("result answers = %v, want question 1 → option 2", res.Answers)
	}

	// A second submit must not dispatch again.
	if _, err := svc.Submit(context.Background(), created.SessionID); err == nil {
		t.Fatal("expected error on second submit")
	}
	if len(sink.results) != 1 {
		t.Errorf("sink got %d results after double submit, want 1", len(sink.results))
	}
}

func TestTickAllAutoSubmits(t *testing.T) {
	svc, sink := newTestService(t)

	created, err := svc.Create(testSet(t), "test paper", 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Two ticks exhaust the limit; the third is a no-op.
	for i := 0; i < 3; i++ {
		svc.tickAll(context.Background())
	}

	if len(sink.results) != 1 {
		t.Fatalf("sink got %d results, want exactly 1 auto-submit", len(sink.results))
	}

	session, err := svc.Get(created.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if session.Status() != exam.StatusSubmitted {
		t.Errorf("status = %s, want SUBMITTED", session.Status())
	}
}

func TestSweepRemovesExpiredSubmitted(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(testSet(t), "test paper", 300)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Submit(context.Background(), created.SessionID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Backdate the submission past retention and tick once.
	svc.mu.Lock()
	svc.sessions[created.SessionID].submittedAt = time.Now().Add(-2 * submittedRetention)
	svc.mu.Unlock()

	svc.tickAll(context.Background())

	if _, err := svc.Get(created.SessionID); err != ErrSessionNotFound {
		t.Fatalf("Get after sweep = %v, want ErrSessionNotFound", err)
	}
	if svc.LiveCount() != 0 {
		t.Errorf("LiveCount = %d, want 0", svc.LiveCount())
	}
}

func TestStateView(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(testSet(t), "test paper", 120)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	session, _ := svc.Get(created.SessionID)
	if err := session.SelectAnswer(1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	state, err := svc.State(created.SessionID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Status != exam.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", state.Status)
	}
	if state.TimeRemaining != 120 {
		t.Errorf("time_remaining = %d, want 120", state.TimeRemaining)
	}
	if state.Progress.AnsweredCount != 1 {
		t.Errorf("answered_count = %d, want 1", state.Progress.AnsweredCount)
	}
}

func TestTickAllConcurrentWithSubmit(t *testing.T) {
	svc, sink := newTestService(t)

	// Enough sessions and iterations that the tick loop and the submit path
	// overlap on the registry; the race detector flags any unlocked access.
	ids := make([]uuid.UUID, 0, 8)
	for i := 0; i < 8; i++ {
		created, err := svc.Create(testSet(t), "test paper", 3600)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, created.SessionID)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			svc.tickAll(context.Background())
		}
	}()

	for _, id := range ids {
		if _, err := svc.Submit(context.Background(), id); err != nil {
			t.Errorf("Submit %s: %v", id, err)
		}
	}
	<-done

	if len(sink.results) != len(ids) {
		t.Errorf("sink got %d results, want %d", len(sink.results), len(ids))
	}
}

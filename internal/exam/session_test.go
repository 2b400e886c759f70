package exam

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func newTestSession(t *testing.T, limit int) *Session {
	t.Helper()
	set, err := NewQuestionSet(threeQuestions())
	if err != nil {
		t.Fatalf("NewQuestionSet: %v", err)
	}
	s, err := NewSession(set, limit)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionRejectsBadLimit(t *testing.T) {
	set, _ := NewQuestionSet(threeQuestions())
	if _, err := NewSession(set, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := NewSession(nil, 60); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for nil set, got %v", err)
	}
}

func TestNavigationClampedAndPure(t *testing.T) {
	s := newTestSession(t, 60)

	if err := s.SelectAnswer(2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := s.ToggleMark(); err != nil {
		t.Fatalf("ToggleMark: %v", err)
	}
	before := s.Snapshot()

	if err := s.GoTo(2); err != nil {
		t.Fatalf("GoTo(2): %v", err)
	}
	if err := s.GoTo(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("GoTo(3): expected ErrOutOfRange, got %v", err)
	}
	if err := s.GoTo(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("GoTo(-1): expected ErrOutOfRange, got %v", err)
	}

	// Next past the last question is a no-op.
	if idx := s.Next(); idx != 2 {
		t.Errorf("Next at last = %d, want 2", idx)
	}
	if idx := s.Previous(); idx != 1 {
		t.Errorf("Previous = %d, want 1", idx)
	}
	s.Previous()
	if idx := s.Previous(); idx != 0 {
		t.Errorf("Previous at first = %d, want 0", idx)
	}

	after := s.Snapshot()
	if !reflect.DeepEqual(before.Answers, after.Answers) {
		t.Errorf("navigation mutated answers: %v → %v", before.Answers, after.Answers)
	}
	if !reflect.DeepEqual(before.MarkedQuestions, after.MarkedQuestions) {
		t.Errorf("navigation mutated marks: %v → %v", before.MarkedQuestions, after.MarkedQuestions)
	}
}

func TestSelectAnswerRoundTrip(t *testing.T) {
	s := newTestSession(t, 60)

	if n := len(s.Snapshot().Answers); n != 0 {
		t.Fatalf("fresh session has %d answers", n)
	}
	if err := s.SelectAnswer(3); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if got := s.Snapshot().Answers[1]; got != 3 {
		t.Fatalf("answers[1] = %d, want 3", got)
	}
	// Overwrite, then clear — back to absent.
	if err := s.SelectAnswer(1); err != nil {
		t.Fatalf("SelectAnswer overwrite: %v", err)
	}
	if err := s.ClearAnswer(); err != nil {
		t.Fatalf("ClearAnswer: %v", err)
	}
	if _, ok := s.Snapshot().Answers[1]; ok {
		t.Error("answer still present after ClearAnswer")
	}
	// Clearing again is a no-op.
	if err := s.ClearAnswer(); err != nil {
		t.Fatalf("ClearAnswer on empty: %v", err)
	}
}

func TestSelectAnswerInvalidOption(t *testing.T) {
	s := newTestSession(t, 60)

	if err := s.SelectAnswer(5); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if err := s.SelectAnswer(0); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption for 0, got %v", err)
	}
	if n := len(s.Snapshot().Answers); n != 0 {
		t.Errorf("rejected answer was recorded: %d entries", n)
	}
}

func TestToggleMarkPairIsIdentity(t *testing.T) {
	s := newTestSession(t, 60)

	on, err := s.ToggleMark()
	if err != nil || !on {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", on, err)
	}
	off, err := s.ToggleMark()
	if err != nil || off {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", off, err)
	}
	if n := len(s.Snapshot().MarkedQuestions); n != 0 {
		t.Errorf("marked set not restored: %d entries", n)
	}
}

func TestProgress(t *testing.T) {
	s := newTestSession(t, 60)

	s.SelectAnswer(1)
	s.Next()
	s.SelectAnswer(2)
	s.ToggleMark()

	p := s.Progress()
	want := Progress{AnsweredCount: 2, MarkedCount: 1, UnansweredCount: 1, PercentComplete: 67}
	if p != want {
		t.Errorf("Progress = %+v, want %+v", p, want)
	}
}

func TestScoreScenario(t *testing.T) {
	// correctOption = [2,1,3]. Answer q1→2 (correct), q2→2 (incorrect),
	// leave q3 unanswered.
	s := newTestSession(t, 60)
	if err := s.SelectAnswer(2); err != nil {
		t.Fatal(err)
	}
	s.Next()
	if err := s.SelectAnswer(2); err != nil {
		t.Fatal(err)
	}

	report, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if report.Total != 3 || report.Correct != 1 || report.Incorrect != 1 || report.Unattempted != 1 {
		t.Errorf("report = %+v, want total:3 correct:1 incorrect:1 unattempted:1", report)
	}
	if report.Percentage != 33 {
		t.Errorf("percentage = %d, want 33", report.Percentage)
	}
	if report.Correct+report.Incorrect+report.Unattempted != report.Total {
		t.Error("partition does not sum to total")
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	s := newTestSession(t, 60)
	s.SelectAnswer(2)

	first, err := s.Submit()
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := s.Submit()
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second Submit: expected ErrAlreadySubmitted, got %v", err)
	}
	if second != nil {
		t.Error("second Submit returned a report")
	}

	kept, ok := s.Report()
	if !ok {
		t.Fatal("Report() missing after submit")
	}
	if *kept != *first {
		t.Errorf("report changed by second submit: %+v → %+v", *first, *kept)
	}
}

func TestMutationsAfterSubmitFail(t *testing.T) {
	s := newTestSession(t, 60)
	if _, err := s.Submit(); err != nil {
		t.Fatal(err)
	}

	if err := s.SelectAnswer(1); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("SelectAnswer: %v", err)
	}
	if err := s.ClearAnswer(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("ClearAnswer: %v", err)
	}
	if _, err := s.ToggleMark(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("ToggleMark: %v", err)
	}
	if err := s.GoTo(1); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("GoTo: %v", err)
	}
	if idx := s.Next(); idx != 0 {
		t.Errorf("Next after submit moved to %d", idx)
	}
}

func TestTickCountsDownAndAutoSubmitsOnce(t *testing.T) {
	s := newTestSession(t, 3)

	if r := s.Tick(); r != nil {
		t.Fatal("tick at 3s produced a report")
	}
	if s.TimeRemaining() != 2 {
		t.Fatalf("remaining = %d, want 2", s.TimeRemaining())
	}
	if r := s.Tick(); r != nil {
		t.Fatal("tick at 2s produced a report")
	}

	report := s.Tick()
	if report == nil {
		t.Fatal("tick reaching 0 did not auto-submit")
	}
	if s.Status() != StatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", s.Status())
	}

	// Any number of further ticks: no new report, no state change.
	for i := 0; i < 10; i++ {
		if r := s.Tick(); r != nil {
			t.Fatalf("tick %d after zero produced a report", i)
		}
	}
	if s.TimeRemaining() != 0 {
		t.Errorf("remaining went below 0: %d", s.TimeRemaining())
	}
}

func TestTimeTakenUsesWallClock(t *testing.T) {
	s := newTestSession(t, 5400)

	base := s.startedAt
	s.now = func() time.Time { return base.Add(42 * time.Second) }

	report, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.TimeTaken != 42 {
		t.Errorf("TimeTaken = %d, want 42", report.TimeTaken)
	}
}

func TestPercentageBounds(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{1, 8, 13}, // 12.5 rounds half up
	}
	for _, c := range cases {
		got := roundPercent(c.correct, c.total)
		if got != c.want {
			t.Errorf("roundPercent(%d, %d) = %d, want %d", c.correct, c.total, got, c.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("roundPercent(%d, %d) = %d outside [0, 100]", c.correct, c.total, got)
		}
	}
}

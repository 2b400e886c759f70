package exam

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Status enumerates session states. The transition is one-way:
// IN_PROGRESS → SUBMITTED.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
)

// ScoreReport is the summary computed exactly once at submission.
type ScoreReport struct {
	Total       int `json:"total"`
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	Unattempted int `json:"unattempted"`
	Percentage  int `json:"percentage"`
	// TimeTaken is wall-clock seconds from start to submission. This is the
	// authoritative elapsed-time figure; the countdown (timeLimit-remaining)
	// may lag behind it when ticks are delayed.
	TimeTaken int `json:"time_taken"`
}

// Progress is a non-mutating view of answer/mark coverage.
type Progress struct {
	AnsweredCount   int `json:"answered_count"`
	MarkedCount     int `json:"marked_count"`
	UnansweredCount int `json:"unanswered_count"`
	PercentComplete int `json:"percent_complete"`
}

// Snapshot is a point-in-time copy of the mutable session state, safe to
// hand to handlers and encoders.
type Snapshot struct {
	CurrentIndex    int         `json:"current_index"`
	TimeRemaining   int         `json:"time_remaining"`
	Status          Status      `json:"status"`
	Answers         map[int]int `json:"answers"`
	MarkedQuestions []int       `json:"marked_questions"`
	StartedAt       time.Time   `json:"started_at"`
}

// Session tracks one attempt through a QuestionSet: current position, the
// answer map, the marked set and the countdown. All methods serialize on an
// internal mutex — the tick loop and request handlers may call concurrently.
type Session struct {
	mu sync.Mutex

	set     *QuestionSet
	current int
	answers map[int]int      // question id → 1-based option
	marked  map[int]struct{} // question ids flagged for review

	timeLimit int // seconds
	remaining int // seconds, floored at 0

	startedAt   time.Time
	submittedAt time.Time
	status      Status
	report      *ScoreReport

	now func() time.Time // injectable clock
}

// NewSession starts an attempt over the given set with a time limit in
// seconds. The countdown only advances through Tick — the caller owns the
// schedule.
func NewSession(set *QuestionSet, timeLimitSeconds int) (*Session, error) {
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("%w: empty question set", ErrValidation)
	}
	if timeLimitSeconds <= 0 {
		return nil, fmt.Errorf("%w: time limit %ds must be positive", ErrValidation, timeLimitSeconds)
	}

	s := &Session{
		set:       set,
		answers:   make(map[int]int),
		marked:    make(map[int]struct{}),
		timeLimit: timeLimitSeconds,
		remaining: timeLimitSeconds,
		status:    StatusInProgress,
		now:       time.Now,
	}
	s.startedAt = s.now()
	return s, nil
}

// Set returns the question set backing this session.
func (s *Session) Set() *QuestionSet {
	return s.set
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentIndex returns the current question position.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Current returns the question at the current position.
func (s *Session) Current() Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, _ := s.set.Get(s.current)
	return q
}

// TimeRemaining returns the countdown value in seconds.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// GoTo moves to the given question index. Pure navigation — answers and
// marks are untouched.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	if index < 0 || index >= s.set.Len() {
		return fmt.Errorf("%w: index %d outside [0, %d)", ErrOutOfRange, index, s.set.Len())
	}
	s.current = index
	return nil
}

// Next advances one question, clamped at the last. Moving past the end is a
// no-op; whether that should trigger a submit confirmation is the caller's
// policy. Returns the resulting index.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusInProgress && s.current < s.set.Len()-1 {
		s.current++
	}
	return s.current
}

// Previous moves one question back, clamped at the first. Returns the
// resulting index.
func (s *Session) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusInProgress && s.current > 0 {
		s.current--
	}
	return s.current
}

// SelectAnswer records the 1-based option position for the current question,
// overwriting any prior answer. Marking is independent and untouched.
func (s *Session) SelectAnswer(optionPosition int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	q, _ := s.set.Get(s.current)
	if optionPosition < 1 || optionPosition > len(q.Options) {
		return fmt.Errorf("%w: option %d outside [1, %d] for question %d", ErrInvalidOption, optionPosition, len(q.Options), q.ID)
	}
	s.answers[q.ID] = optionPosition
	return nil
}

// ClearAnswer removes the current question's answer, if any.
func (s *Session) ClearAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	q, _ := s.set.Get(s.current)
	delete(s.answers, q.ID)
	return nil
}

// ToggleMark flips the review flag on the current question and returns the
// new marked state.
func (s *Session) ToggleMark() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return false, ErrAlreadySubmitted
	}
	q, _ := s.set.Get(s.current)
	if _, ok := s.marked[q.ID]; ok {
		delete(s.marked, q.ID)
		return false, nil
	}
	s.marked[q.ID] = struct{}{}
	return true, nil
}

// Tick advances the countdown by one second, floored at zero. When the
// countdown reaches zero while in progress the session auto-submits and the
// report is returned — exactly once. Every later tick is a no-op returning
// nil.
func (s *Session) Tick() *ScoreReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return nil
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		return s.submitLocked()
	}
	return nil
}

// Submit finalizes the attempt and computes the score. A second call fails
// with ErrAlreadySubmitted and leaves the first report untouched.
func (s *Session) Submit() (*ScoreReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusSubmitted {
		return nil, ErrAlreadySubmitted
	}
	return s.submitLocked(), nil
}

// submitLocked transitions to SUBMITTED and computes the report. Caller
// holds the mutex and has checked status.
func (s *Session) submitLocked() *ScoreReport {
	s.status = StatusSubmitted
	s.submittedAt = s.now()

	report := &ScoreReport{Total: s.set.Len()}
	for _, q := range s.set.questions {
		selected, ok := s.answers[q.ID]
		switch {
		case !ok:
			report.Unattempted++
		case selected == q.CorrectOption:
			report.Correct++
		default:
			report.Incorrect++
		}
	}
	report.Percentage = roundPercent(report.Correct, report.Total)
	report.TimeTaken = int(s.submittedAt.Sub(s.startedAt).Seconds())

	s.report = report
	return report
}

// Report returns the score report if the session has been submitted.
func (s *Session) Report() (*ScoreReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return nil, false
	}
	r := *s.report
	return &r, true
}

// Progress reports answer/mark coverage without mutation.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.set.Len()
	answered := len(s.answers)
	return Progress{
		AnsweredCount:   answered,
		MarkedCount:     len(s.marked),
		UnansweredCount: total - answered,
		PercentComplete: roundPercent(answered, total),
	}
}

// Snapshot copies the mutable state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]int, len(s.answers))
	for id, opt := range s.answers {
		answers[id] = opt
	}
	marked := make([]int, 0, len(s.marked))
	for id := range s.marked {
		marked = append(marked, id)
	}
	sort.Ints(marked)

	return Snapshot{
		CurrentIndex:    s.current,
		TimeRemaining:   s.remaining,
		Status:          s.status,
		Answers:         answers,
		MarkedQuestions: marked,
		StartedAt:       s.startedAt,
	}
}

// roundPercent computes round(100*part/total), half away from zero.
func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

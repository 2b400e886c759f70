package exam

import "fmt"

// Question is a single prompt with ordered options. Option identity is the
// 1-based position in Options — never the display label — so grading and
// selections compare as integers.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// validate checks the per-question invariants.
func (q Question) validate() error {
	if q.ID <= 0 {
		return fmt.Errorf("%w: question id %d must be positive", ErrValidation, q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d has %d options, need at least 2", ErrValidation, q.ID, len(q.Options))
	}
	if q.CorrectOption < 1 || q.CorrectOption > len(q.Options) {
		return fmt.Errorf("%w: question %d correct option %d outside [1, %d]", ErrValidation, q.ID, q.CorrectOption, len(q.Options))
	}
	return nil
}

// QuestionSet is the immutable, ordered list of questions for one attempt.
// Insertion order defines the canonical ordering.
type QuestionSet struct {
	questions []Question
	byID      map[int]int // id → index
}

// NewQuestionSet validates and freezes a question sequence.
func NewQuestionSet(questions []Question) (*QuestionSet, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrValidation)
	}

	set := &QuestionSet{
		questions: make([]Question, len(questions)),
		byID:      make(map[int]int, len(questions)),
	}

	for i, q := range questions {
		if err := q.validate(); err != nil {
			return nil, err
		}
		if _, dup := set.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrValidation, q.ID)
		}
		// Copy options so later mutation of the input slice cannot leak in.
		q.Options = append([]string(nil), q.Options...)
		set.questions[i] = q
		set.byID[q.ID] = i
	}

	return set, nil
}

// Len returns the number of questions.
func (s *QuestionSet) Len() int {
	return len(s.questions)
}

// Get returns the question at index.
func (s *QuestionSet) Get(index int) (Question, error) {
	if index < 0 || index >= len(s.questions) {
		return Question{}, fmt.Errorf("%w: index %d outside [0, %d)", ErrOutOfRange, index, len(s.questions))
	}
	return s.questions[index], nil
}

// IndexOfID returns the position of the question with the given id.
func (s *QuestionSet) IndexOfID(id int) (int, error) {
	idx, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return idx, nil
}

// Questions returns a copy of the ordered question list. Option slices are
// copied too, so callers can edit the result freely.
func (s *QuestionSet) Questions() []Question {
	out := make([]Question, len(s.questions))
	for i, q := range s.questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

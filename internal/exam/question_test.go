package exam

import (
	"errors"
	"testing"
)

func threeQuestions() []Question {
	return []Question{
		{ID: 1, Text: "The capital of France is ______", Options: []string{"Berlin", "Paris", "Rome", "Madrid"}, CorrectOption: 2},
		{ID: 2, Text: "Water boils at ______ degrees Celsius", Options: []string{"100", "90", "80", "120"}, CorrectOption: 1},
		{ID: 3, Text: "The largest planet is ______", Options: []string{"Mars", "Venus", "Jupiter", "Mercury"}, CorrectOption: 3},
	}
}

func TestNewQuestionSetEmpty(t *testing.T) {
	if _, err := NewQuestionSet(nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewQuestionSetDuplicateID(t *testing.T) {
	qs := threeQuestions()
	qs[2].ID = 1
	if _, err := NewQuestionSet(qs); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewQuestionSetCorrectOptionOutOfRange(t *testing.T) {
	qs := threeQuestions()
	qs[0].CorrectOption = 5
	if _, err := NewQuestionSet(qs); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewQuestionSetTooFewOptions(t *testing.T) {
	qs := threeQuestions()
	qs[1].Options = []string{"only one"}
	qs[1].CorrectOption = 1
	if _, err := NewQuestionSet(qs); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestQuestionSetLookups(t *testing.T) {
	set, err := NewQuestionSet(threeQuestions())
	if err != nil {
		t.Fatalf("NewQuestionSet: %v", err)
	}

	if set.Len() != 3 {
		t.Fatalf("Len = %d, want 3", set.Len())
	}

	q, err := set.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if q.ID != 2 {
		t.Errorf("Get(1).ID = %d, want 2", q.ID)
	}

	if _, err := set.Get(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Get(3): expected ErrOutOfRange, got %v", err)
	}
	if _, err := set.Get(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Get(-1): expected ErrOutOfRange, got %v", err)
	}

	idx, err := set.IndexOfID(3)
	if err != nil {
		t.Fatalf("IndexOfID(3): %v", err)
	}
	if idx != 2 {
		t.Errorf("IndexOfID(3) = %d, want 2", idx)
	}
	if _, err := set.IndexOfID(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("IndexOfID(99): expected ErrNotFound, got %v", err)
	}
}

func TestQuestionSetImmutableCopies(t *testing.T) {
	input := threeQuestions()
	set, err := NewQuestionSet(input)
	if err != nil {
		t.Fatalf("NewQuestionSet: %v", err)
	}

	// Mutating the input after construction must not leak in.
	input[0].Options[0] = "mutated"
	q, _ := set.Get(0)
	if q.Options[0] == "mutated" {
		t.Error("input mutation leaked into the set")
	}

	// Mutating a returned copy must not leak in either.
	out := set.Questions()
	out[1].Options[0] = "mutated"
	q, _ = set.Get(1)
	if q.Options[0] == "mutated" {
		t.Error("output mutation leaked into the set")
	}
}

package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/docquiz/docquiz-backend/internal/exam"
)

const samplePaper = `
1. What is the capital of France?
(A) Berlin
(B) Paris
(C) Rome
(D) Madrid
2. Which planet is largest?
A. Mars
B. Venus
C. Jupiter
D. Mercury
Q3. Water boils at which temperature?
(a) 100 degrees
(b) 90 degrees
(c) 80 degrees
(d) 120 degrees
`

const sampleProse = `The committee discussed the proposal during the afternoon meeting.
The ancient library contained thousands of valuable manuscripts inside.
Every student should practice writing complete sentences every single day.
Modern software requires careful testing before any public release happens.`

func TestExtractStructured(t *testing.T) {
	g := NewGenerator(1)
	qs := g.ExtractStructured(samplePaper)

	if len(qs) != 3 {
		t.Fatalf("extracted %d questions, want 3", len(qs))
	}
	if qs[0].Text != "What is the capital of France?" {
		t.Errorf("q1 text = %q", qs[0].Text)
	}
	if len(qs[1].Options) != 4 || qs[1].Options[2] != "Jupiter" {
		t.Errorf("q2 options = %v", qs[1].Options)
	}
	for _, q := range qs {
		if q.CorrectOption != 1 {
			t.Errorf("scraped question defaulted correct option to %d, want 1", q.CorrectOption)
		}
	}
}

func TestExtractStructuredIgnoresIncompleteQuestions(t *testing.T) {
	g := NewGenerator(1)
	qs := g.ExtractStructured("1. A question with too few options\n(A) one\n(B) two\n")
	if len(qs) != 0 {
		t.Fatalf("extracted %d questions from incomplete paper, want 0", len(qs))
	}
}

func TestFillInBlanksProduceValidQuestions(t *testing.T) {
	g := NewGenerator(42)
	qs := g.FillInBlanks(sampleProse, 10)

	if len(qs) == 0 {
		t.Fatal("no blank questions generated")
	}
	for i := range qs {
		qs[i].ID = i + 1
	}
	if _, err := exam.NewQuestionSet(qs); err != nil {
		t.Fatalf("generated questions fail validation: %v", err)
	}
	for _, q := range qs {
		if !strings.Contains(q.Text, "______") {
			t.Errorf("question %q has no blank", q.Text)
		}
		if len(q.Options) != 4 {
			t.Errorf("question has %d options, want 4", len(q.Options))
		}
	}
}

func TestFillInBlanksDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(7).FillInBlanks(sampleProse, 10)
	b := NewGenerator(7).FillInBlanks(sampleProse, 10)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Text != b[i].Text || a[i].CorrectOption != b[i].CorrectOption {
			t.Errorf("question %d differs across identical seeds", i)
		}
	}
}

func TestGenerateCapsAndRenumbers(t *testing.T) {
	g := NewGenerator(3)
	sources := []SourceText{
		{Name: "paper.pdf", Text: samplePaper},
		{Name: "prose.txt", Text: sampleProse},
	}

	qs := g.Generate(sources, 5)
	if len(qs) > 5 {
		t.Fatalf("generated %d questions, cap was 5", len(qs))
	}
	for i, q := range qs {
		if q.ID != i+1 {
			t.Errorf("question %d has id %d", i, q.ID)
		}
	}
}

func TestFallbackQuestionsAreValid(t *testing.T) {
	if _, err := exam.NewQuestionSet(FallbackQuestions()); err != nil {
		t.Fatalf("fallback set invalid: %v", err)
	}
}

func TestReadFileTxt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("hello quiz"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if src.Text != "hello quiz" || src.Name != "sample.txt" {
		t.Errorf("src = %+v", src)
	}
}

func TestReadFileUnsupported(t *testing.T) {
	if _, err := ReadFile("notes.md"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if IsSupported("notes.md") {
		t.Error("IsSupported(.md) = true")
	}
	if !IsSupported("paper.PDF") {
		t.Error("IsSupported(.PDF) = false")
	}
}

func TestBuildOptionsCapitalizationFollowsAnswer(t *testing.T) {
	g := NewGenerator(7)

	// A multibyte uppercase first letter must still count as uppercase.
	options, correct := g.buildOptions("École")
	if options[correct-1] != "École" {
		t.Fatalf("option at position %d = %q, want the answer", correct, options[correct-1])
	}
	for _, opt := range options {
		first, _ := utf8.DecodeRuneInString(opt)
		if !unicode.IsUpper(first) {
			t.Errorf("option %q should be capitalized like the answer", opt)
		}
	}

	// Lowercase answers keep lowercase distractors.
	options, correct = g.buildOptions("velocity")
	for _, opt := range options {
		if opt == options[correct-1] {
			continue
		}
		first, _ := utf8.DecodeRuneInString(opt)
		if unicode.IsUpper(first) {
			t.Errorf("option %q should stay lowercase", opt)
		}
	}
}

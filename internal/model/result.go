package model

import (
	"time"

	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/google/uuid"
)

// ExamResult is the submission-sink record: the score report plus the raw
// answers and marks, queued on submit and persisted by the result worker.
type ExamResult struct {
	SessionID       uuid.UUID   `json:"session_id"`
	Source          string      `json:"source"`
	Total           int         `json:"total"`
	Correct         int         `json:"correct"`
	Incorrect       int         `json:"incorrect"`
	Unattempted     int         `json:"unattempted"`
	Percentage      int         `json:"percentage"`
	TimeTaken       int         `json:"time_taken"`
	Answers         map[int]int `json:"answers"`
	MarkedQuestions []int       `json:"marked_questions"`
	SubmittedAt     time.Time   `json:"submitted_at"`
}

// NewExamResult assembles the persisted record from a submitted session.
func NewExamResult(sessionID uuid.UUID, source string, report *exam.ScoreReport, snap exam.Snapshot, submittedAt time.Time) *ExamResult {
	return &ExamResult{
		SessionID:       sessionID,
		Source:          source,
		Total:           report.Total,
		Correct:         report.Correct,
		Incorrect:       report.Incorrect,
		Unattempted:     report.Unattempted,
		Percentage:      report.Percentage,
		TimeTaken:       report.TimeTaken,
		Answers:         snap.Answers,
		MarkedQuestions: snap.MarkedQuestions,
		SubmittedAt:     submittedAt,
	}
}

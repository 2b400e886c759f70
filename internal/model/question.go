package model

import (
	"github.com/docquiz/docquiz-backend/internal/exam"
)

// QuestionForTaker is a question stripped of its correct option, safe to
// send to the exam taker.
type QuestionForTaker struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// QuestionPayload is the Redis-cached paper for one extracted set.
type QuestionPayload struct {
	SetID     string             `json:"set_id"`
	Source    string             `json:"source"`
	Total     int                `json:"total"`
	Questions []QuestionForTaker `json:"questions"`
}

// SanitizeQuestions strips correct options for delivery.
func SanitizeQuestions(questions []exam.Question) []QuestionForTaker {
	out := make([]QuestionForTaker, len(questions))
	for i, q := range questions {
		out[i] = QuestionForTaker{ID: q.ID, Text: q.Text, Options: q.Options}
	}
	return out
}

// QuestionInput is one supplied question in a create-session request. The
// structural invariants are enforced by exam.NewQuestionSet; binding only
// rejects obviously malformed payloads early.
type QuestionInput struct {
	ID            int      `json:"id" binding:"required,min=1"`
	Text          string   `json:"text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,dive,min=1"`
	CorrectOption int      `json:"correct_option" binding:"required,min=1"`
}

// ToExam converts supplied questions to the core representation.
func ToExam(inputs []QuestionInput) []exam.Question {
	out := make([]exam.Question, len(inputs))
	for i, in := range inputs {
		out[i] = exam.Question{
			ID:            in.ID,
			Text:          in.Text,
			Options:       in.Options,
			CorrectOption: in.CorrectOption,
		}
	}
	return out
}

// StartExtractionRequest is the payload for starting a background extraction.
type StartExtractionRequest struct {
	QuestionCount int  `json:"question_count" binding:"omitempty,min=1,max=100"`
	UseSamples    bool `json:"use_samples"`
}

// ExtractionProgress mirrors the staged progress of a running extraction job.
type ExtractionProgress struct {
	JobID          string `json:"job_id"`
	Status         string `json:"status"` // starting | processing | finalizing | completed | error
	Progress       int    `json:"progress"`
	Message        string `json:"message"`
	QuestionsFound int    `json:"questions_found"`
	CurrentFile    string `json:"current_file"`
}

// SampleFile describes one file available in the sample directory.
type SampleFile struct {
	Name        string `json:"name"`
	Size        string `json:"size"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// UploadedFile describes one stored upload.
type UploadedFile struct {
	Name       string `json:"name"`
	StoredName string `json:"stored_name"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
}

// SamplePreview is a first-page text preview of the sample documents.
type SamplePreview struct {
	Content  string            `json:"content"`
	Metadata []SampleFileStats `json:"metadata"`
}

// SampleFileStats carries per-file preview metadata.
type SampleFileStats struct {
	Name         string `json:"name"`
	Size         string `json:"size"`
	LastModified string `json:"last_modified"`
	Pages        int    `json:"pages,omitempty"`
}

package model

import (
	"time"

	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/google/uuid"
)

// CreateSessionRequest starts a new exam attempt. When Questions is empty
// the current extracted set is used; an external question supplier may embed
// its own list instead.
type CreateSessionRequest struct {
	TimeLimitSeconds int             `json:"time_limit_seconds" binding:"omitempty,min=1,max=86400"`
	Questions        []QuestionInput `json:"questions" binding:"omitempty,dive"`
}

// CreateSessionResponse returns the session handle and its paper.
type CreateSessionResponse struct {
	SessionID        uuid.UUID          `json:"session_id"`
	Token            string             `json:"token"`
	TimeLimitSeconds int                `json:"time_limit_seconds"`
	Total            int                `json:"total"`
	Questions        []QuestionForTaker `json:"questions"`
}

// SessionState is the reloadable view of a live attempt: what the frontend
// needs after a page refresh.
type SessionState struct {
	SessionID       uuid.UUID     `json:"session_id"`
	Status          exam.Status   `json:"status"`
	CurrentIndex    int           `json:"current_index"`
	TimeRemaining   int           `json:"time_remaining"`
	Answers         map[int]int   `json:"answers"`
	MarkedQuestions []int         `json:"marked_questions"`
	StartedAt       time.Time     `json:"started_at"`
	Progress        exam.Progress `json:"progress"`
}

// GoToRequest navigates to a question index.
type GoToRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// AnswerRequest selects an option (1-based) for the current question.
type AnswerRequest struct {
	Option int `json:"option" binding:"required,min=1"`
}

package exam

import "errors"

// Sentinel errors returned by QuestionSet and Session operations.
// All are structural and deterministic — callers decide the user-facing
// messaging (see internal/response for the HTTP mapping).
var (
	ErrValidation       = errors.New("invalid question set")
	ErrOutOfRange       = errors.New("index out of range")
	ErrNotFound         = errors.New("question not found")
	ErrInvalidOption    = errors.New("option out of range")
	ErrAlreadySubmitted = errors.New("session already submitted")
)

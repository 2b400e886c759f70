package handler

import (
	"errors"
	"net/http"

	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/docquiz/docquiz-backend/internal/middleware"
	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/docquiz/docquiz-backend/internal/response"
	"github.com/docquiz/docquiz-backend/internal/service"
	"github.com/docquiz/docquiz-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionHandler handles exam session endpoints.
type SessionHandler struct {
	sessionService    *service.SessionService
	extractionService *service.ExtractionService
	log               zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, extractionService *service.ExtractionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService:    sessionService,
		extractionService: extractionService,
		log:               log.With().Str("component", "session_handler").Logger(),
	}
}

// Create godoc
// POST /api/v1/sessions
// Starts an exam session over the current extracted set, or over questions
// supplied in the request body.
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	var (
		set    *exam.QuestionSet
		source string
		err    error
	)
	if len(req.Questions) > 0 {
		set, err = exam.NewQuestionSet(model.ToExam(req.Questions))
		source = "supplied questions"
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
	} else {
		set, source, err = h.extractionService.CurrentSet()
		if err != nil {
			response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
			return
		}
	}

	created, err := h.sessionService.Create(set, source, req.TimeLimitSeconds)
	if err != nil {
		if errors.Is(err, exam.ErrValidation) {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// State godoc
// GET /api/v1/sessions/:session_id/state
// Returns the reloadable session state.
func (h *SessionHandler) State(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.sessionService.State(id)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Progress godoc
// GET /api/v1/sessions/:session_id/progress
// Returns answer/mark coverage without touching the session.
func (h *SessionHandler) Progress(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, session.Progress())
}

// GoTo godoc
// POST /api/v1/sessions/:session_id/goto
// Moves the session to a question index.
func (h *SessionHandler) GoTo(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.GoToRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := session.GoTo(*req.Index); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"current_index": session.CurrentIndex()})
}

// Next godoc
// POST /api/v1/sessions/:session_id/next
// Advances one question, clamped at the last.
func (h *SessionHandler) Next(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"current_index": session.Next()})
}

// Previous godoc
// POST /api/v1/sessions/:session_id/previous
// Moves one question back, clamped at the first.
func (h *SessionHandler) Previous(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"current_index": session.Previous()})
}

// Answer godoc
// POST /api/v1/sessions/:session_id/answer
// Records a 1-based option for the current question.
func (h *SessionHandler) Answer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := session.SelectAnswer(req.Option); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// ClearAnswer godoc
// DELETE /api/v1/sessions/:session_id/answer
// Removes the current question's answer.
func (h *SessionHandler) ClearAnswer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.ClearAnswer(); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "cleared"})
}

// ToggleMark godoc
// POST /api/v1/sessions/:session_id/mark
// Flips the review flag on the current question.
func (h *SessionHandler) ToggleMark(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	marked, err := session.ToggleMark()
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": marked})
}

// Submit godoc
// POST /api/v1/sessions/:session_id/submit
// Finalizes the attempt and returns the score report.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	report, err := h.sessionService.Submit(c.Request.Context(), id)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// sessionID pulls the authenticated session id set by the middleware.
func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, false
	}
	return id, true
}

// session resolves the live session for the authenticated id.
func (h *SessionHandler) session(c *gin.Context) (*exam.Session, bool) {
	id, ok := h.sessionID(c)
	if !ok {
		return nil, false
	}

	session, err := h.sessionService.Get(id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}
	return session, true
}

// failSession maps domain errors onto HTTP responses.
func (h *SessionHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, exam.ErrOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrOutOfRange)
	case errors.Is(err, exam.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, exam.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, exam.ErrValidation):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		h.log.Error().Err(err).Msg("Unhandled session error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
